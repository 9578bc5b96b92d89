package calendar

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
)

// SessionSource reports the trading dates of an external reference
// calendar in [start, end].
type SessionSource interface {
	Sessions(start, end civil.Date) ([]civil.Date, error)
}

// SessionDiff lists where a reference calendar and the computed calendar
// disagree.
type SessionDiff struct {
	// Missing are reference sessions the computed calendar treats as closed.
	Missing []civil.Date `json:"missing"`
	// Extra are computed sessions the reference treats as closed.
	Extra []civil.Date `json:"extra"`
}

// Empty reports whether the two calendars agree.
func (d SessionDiff) Empty() bool {
	return len(d.Missing) == 0 && len(d.Extra) == 0
}

// Verify compares Sessions(start, end) against ref over the same range.
func (tc *TradingCalendar) Verify(ref SessionSource, start, end civil.Date) (SessionDiff, error) {
	ours, err := tc.Sessions(start, end)
	if err != nil {
		return SessionDiff{}, err
	}
	theirs, err := ref.Sessions(start, end)
	if err != nil {
		return SessionDiff{}, fmt.Errorf("reference sessions: %w", err)
	}

	oursSet := dateSet{}
	oursSet.add(ours...)
	theirsSet := dateSet{}
	theirsSet.add(theirs...)

	var diff SessionDiff
	for _, d := range theirs {
		if !oursSet.has(d) && !d.Before(start) && !d.After(end) {
			diff.Missing = append(diff.Missing, d)
		}
	}
	for _, d := range ours {
		if !theirsSet.has(d) {
			diff.Extra = append(diff.Extra, d)
		}
	}
	return diff, nil
}

// AlpacaSessions reads trading dates from the Alpaca calendar API.
type AlpacaSessions struct {
	client *alpaca.Client
}

// NewAlpacaSessions creates an AlpacaSessions for the given credentials.
func NewAlpacaSessions(apiKey, apiSecret, baseURL string) *AlpacaSessions {
	return &AlpacaSessions{
		client: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
	}
}

// Sessions returns the dates Alpaca lists as trading days in [start, end].
func (a *AlpacaSessions) Sessions(start, end civil.Date) ([]civil.Date, error) {
	days, err := a.client.GetCalendar(alpaca.GetCalendarRequest{
		Start: start.In(time.UTC),
		End:   end.In(time.UTC),
	})
	if err != nil {
		return nil, fmt.Errorf("GetCalendar: %w", err)
	}

	out := make([]civil.Date, 0, len(days))
	for _, cd := range days {
		d, err := civil.ParseDate(cd.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing calendar date %q: %w", cd.Date, err)
		}
		out = append(out, d)
	}
	return out, nil
}
