package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"marketclock/internal/calendar"
	"marketclock/internal/format"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05 MST"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	dateLayout,
}

// parseTime reads s in the calendar's location; an empty s means now.
func (a *app) parseTime(s string) (time.Time, error) {
	loc := a.cal.Location()
	if s == "" {
		return a.now().In(loc), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not a valid date: %s", s)
}

func parseDate(flag, s string) (civil.Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("--%s: not a valid date: %s", flag, s)
	}
	return d, nil
}

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the market is open right now",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			open, err := a.cal.IsOpenNow()
			if err != nil {
				return err
			}
			now := a.now().In(a.cal.Location())

			if a.asJSON {
				return a.printJSON(struct {
					Time time.Time `json:"time"`
					Open bool      `json:"open"`
				}{now, open})
			}

			state := "closed"
			if open {
				state = "open"
			}
			_, err = fmt.Fprintf(a.out, "%s  market %s\n", now.Format(dateTimeLayout), state)
			return err
		},
	}
}

func holidaysCmd(a *app) *cobra.Command {
	var public bool

	c := &cobra.Command{
		Use:   "holidays [year...]",
		Short: "List market holidays (or all public holidays) for the given years",
		RunE: func(_ *cobra.Command, args []string) error {
			years := []int{a.now().In(a.cal.Location()).Year()}
			if len(args) > 0 {
				years = years[:0]
				for _, arg := range args {
					y, err := strconv.Atoi(arg)
					if err != nil {
						return fmt.Errorf("not a valid year: %s", arg)
					}
					years = append(years, y)
				}
			}

			if public {
				return a.printPublicHolidays(years)
			}
			return a.printMarketHolidays(years)
		},
	}

	c.Flags().BoolVar(&public, "public", false, "List every public holiday instead of market closures")
	return c
}

func (a *app) printMarketHolidays(years []int) error {
	hs, err := a.cal.MarketHolidays(years...)
	if err != nil {
		return err
	}

	seen := make(map[civil.Date]bool, len(hs))
	dates := make([]civil.Date, 0, len(hs))
	for _, d := range hs {
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	if a.asJSON {
		return a.printJSON(dates)
	}
	rows := make([][]string, 0, len(dates))
	for _, d := range dates {
		rows = append(rows, []string{d.String(), d.In(time.UTC).Weekday().String()})
	}
	return a.printTable([]string{"DATE", "WEEKDAY"}, rows)
}

func (a *app) printPublicHolidays(years []int) error {
	hs, err := a.cal.PublicHolidays(years...)
	if err != nil {
		return err
	}
	sort.SliceStable(hs, func(i, j int) bool { return hs[i].Date.Before(hs[j].Date) })

	if a.asJSON {
		return a.printJSON(hs)
	}
	rows := make([][]string, 0, len(hs))
	for _, h := range hs {
		rows = append(rows, []string{h.Date.String(), h.Date.In(time.UTC).Weekday().String(), h.Name})
	}
	return a.printTable([]string{"DATE", "WEEKDAY", "HOLIDAY"}, rows)
}

func nextCmd(a *app) *cobra.Command {
	var from string
	var n int

	c := &cobra.Command{
		Use:   "next",
		Short: "List the next trading days after a starting time",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			start, err := a.parseTime(from)
			if err != nil {
				return err
			}
			days, err := a.cal.NextTradingDays(start, n)
			if err != nil {
				return err
			}

			if a.asJSON {
				return a.printJSON(days)
			}
			rows := make([][]string, 0, len(days))
			for i, d := range days {
				rows = append(rows, []string{strconv.Itoa(i + 1), d.Format(dateTimeLayout), d.Weekday().String()})
			}
			return a.printTable([]string{"#", "SESSION", "WEEKDAY"}, rows)
		},
	}

	c.Flags().StringVar(&from, "from", "", "Start time (YYYY-MM-DD, YYYY-MM-DD HH:MM or RFC3339; default now)")
	c.Flags().IntVarP(&n, "count", "n", 5, "Number of trading days")
	return c
}

func lastOpenCmd(a *app) *cobra.Command {
	var at string

	c := &cobra.Command{
		Use:   "last-open",
		Short: "Show the last day the market was open at or before a time",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			t, err := a.parseTime(at)
			if err != nil {
				return err
			}
			last, err := a.cal.LastMarketOpenTime(t)
			if err != nil {
				return err
			}

			if a.asJSON {
				return a.printJSON(last)
			}
			_, err = fmt.Fprintln(a.out, last.Format(dateTimeLayout))
			return err
		},
	}

	c.Flags().StringVar(&at, "at", "", "Reference time (default now)")
	return c
}

func sessionsCmd(a *app) *cobra.Command {
	var start, end string

	c := &cobra.Command{
		Use:   "sessions",
		Short: "List trading dates in a range",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s, err := parseDate("start", start)
			if err != nil {
				return err
			}
			e, err := parseDate("end", end)
			if err != nil {
				return err
			}
			days, err := a.cal.Sessions(s, e)
			if err != nil {
				return err
			}

			if a.asJSON {
				return a.printJSON(days)
			}
			rows := make([][]string, 0, len(days))
			for _, d := range days {
				rows = append(rows, []string{d.String(), d.In(time.UTC).Weekday().String()})
			}
			if err := a.printTable([]string{"DATE", "WEEKDAY"}, rows); err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "%s sessions\n", format.LongNumber(float64(len(days))))
			return err
		},
	}

	c.Flags().StringVar(&start, "start", "", "First date (YYYY-MM-DD)")
	c.Flags().StringVar(&end, "end", "", "Last date (YYYY-MM-DD)")
	_ = c.MarkFlagRequired("start")
	_ = c.MarkFlagRequired("end")
	return c
}

func verifyCmd(a *app) *cobra.Command {
	var start, end string

	c := &cobra.Command{
		Use:   "verify",
		Short: "Compare computed sessions against the Alpaca trading calendar",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s, err := parseDate("start", start)
			if err != nil {
				return err
			}
			e, err := parseDate("end", end)
			if err != nil {
				return err
			}

			ref := a.ref
			if ref == nil {
				if a.cfg.Alpaca.APIKey == "" || a.cfg.Alpaca.APISecret == "" {
					return errors.New("verify needs Alpaca credentials (APCA_API_KEY_ID / APCA_API_SECRET_KEY)")
				}
				ref = calendar.NewAlpacaSessions(a.cfg.Alpaca.APIKey, a.cfg.Alpaca.APISecret, a.cfg.Alpaca.BaseURL)
			}

			diff, err := a.cal.Verify(ref, s, e)
			if err != nil {
				return err
			}
			a.logger.Info("calendar verified",
				"start", s.String(),
				"end", e.String(),
				"missing", len(diff.Missing),
				"extra", len(diff.Extra),
			)

			if a.asJSON {
				return a.printJSON(diff)
			}
			if diff.Empty() {
				_, err = fmt.Fprintln(a.out, "calendars agree")
				return err
			}
			rows := make([][]string, 0, len(diff.Missing)+len(diff.Extra))
			for _, d := range diff.Missing {
				rows = append(rows, []string{d.String(), "closed here"})
			}
			for _, d := range diff.Extra {
				rows = append(rows, []string{d.String(), "closed at reference"})
			}
			return a.printTable([]string{"DATE", "DIFFERENCE"}, rows)
		},
	}

	c.Flags().StringVar(&start, "start", "", "First date (YYYY-MM-DD)")
	c.Flags().StringVar(&end, "end", "", "Last date (YYYY-MM-DD)")
	_ = c.MarkFlagRequired("start")
	_ = c.MarkFlagRequired("end")
	return c
}

func rateCmd(a *app) *cobra.Command {
	var (
		strict bool
		minArg string
	)

	c := &cobra.Command{
		Use:   "rate",
		Short: "Show the risk-free rate (latest average Treasury Bill rate)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var floor float64
			if minArg != "" {
				v, err := format.ParseScaledValue(minArg)
				if err != nil {
					return fmt.Errorf("--min: %w", err)
				}
				floor = v
			}

			var rate float64
			if strict || a.cfg.Treasury.Strict {
				r, err := a.rates.LatestTBillRate(cmd.Context())
				if err != nil {
					return err
				}
				rate = r
			} else {
				rate = a.rates.RiskFreeRate(cmd.Context())
			}

			if a.asJSON {
				if err := a.printJSON(struct {
					Rate float64 `json:"rate"`
				}{rate}); err != nil {
					return err
				}
			} else {
				pct := strconv.FormatFloat(rate*100, 'f', 3, 64) + "%"
				if _, err := fmt.Fprintf(a.out, "risk-free rate %s\n", format.ColorFinancialValue(pct)); err != nil {
					return err
				}
			}
			if minArg != "" && rate < floor {
				return fmt.Errorf("risk-free rate %.5f is below minimum %s", rate, minArg)
			}
			return nil
		},
	}

	c.Flags().BoolVar(&strict, "strict", false, "Fail instead of falling back to the default rate")
	c.Flags().StringVar(&minArg, "min", "", `Fail when the rate is below this value (e.g. "1.5%")`)
	return c
}
