// Package calendar implements the US equity trading calendar: market
// holidays, regular-session open state, and trading-day arithmetic.
package calendar

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// DefaultLocation is the IANA zone the market calendar runs in.
const DefaultLocation = "America/New_York"

const (
	sessionOpen  = 9*time.Hour + 30*time.Minute
	sessionClose = 16 * time.Hour

	// lastOpenMarkerHour is the clock hour LastMarketOpenTime stamps on the
	// returned date. It is not the session close.
	lastOpenMarkerHour = 21
)

// TradingCalendar provides market-hours awareness for the US stock market.
// It holds no mutable state and is safe for concurrent use.
type TradingCalendar struct {
	loc    *time.Location
	source HolidaySource
	now    func() time.Time
}

// Option configures a TradingCalendar.
type Option func(*TradingCalendar)

// WithLocation sets the zone IsMarketOpen evaluates session hours in.
func WithLocation(loc *time.Location) Option {
	return func(tc *TradingCalendar) { tc.loc = loc }
}

// WithHolidaySource replaces the public-holiday source.
func WithHolidaySource(src HolidaySource) Option {
	return func(tc *TradingCalendar) { tc.source = src }
}

// WithClock replaces time.Now for IsOpenNow.
func WithClock(now func() time.Time) Option {
	return func(tc *TradingCalendar) { tc.now = now }
}

// New creates a TradingCalendar in America/New_York backed by
// FederalHolidays.
func New(opts ...Option) (*TradingCalendar, error) {
	tc := &TradingCalendar{
		source: FederalHolidays{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(tc)
	}
	if tc.loc == nil {
		loc, err := time.LoadLocation(DefaultLocation)
		if err != nil {
			return nil, fmt.Errorf("loading ET timezone: %w", err)
		}
		tc.loc = loc
	}
	return tc, nil
}

// Location returns the zone session hours are evaluated in.
func (tc *TradingCalendar) Location() *time.Location {
	return tc.loc
}

// IsMarketOpen reports whether now falls inside a regular session:
// a weekday that is not a market holiday, between 09:30:00 and 16:00:00
// inclusive in the calendar's location.
func (tc *TradingCalendar) IsMarketOpen(now time.Time) (bool, error) {
	now = now.In(tc.loc)
	today := civil.DateOf(now)

	if isWeekend(today) {
		return false, nil
	}

	holidays, err := tc.MarketHolidays(now.Year())
	if err != nil {
		return false, err
	}
	set := dateSet{}
	set.add(holidays...)
	if set.has(today) {
		return false, nil
	}

	tod := timeOfDay(now)
	if tod < sessionOpen || tod > sessionClose {
		return false, nil
	}
	return true, nil
}

// IsOpenNow is IsMarketOpen evaluated at the calendar's clock.
func (tc *TradingCalendar) IsOpenNow() (bool, error) {
	return tc.IsMarketOpen(tc.now())
}

// NextTradingDays returns the n trading days after last. Each candidate is
// last advanced by whole calendar days in last's location, so every result
// keeps last's wall clock across DST changes.
func (tc *TradingCalendar) NextTradingDays(last time.Time, n int) ([]time.Time, error) {
	if n <= 0 {
		return []time.Time{}, nil
	}

	out := make([]time.Time, 0, n)
	loaded := make(map[int]bool)
	holidays := dateSet{}

	for len(out) < n {
		last = last.AddDate(0, 0, 1)
		d := civil.DateOf(last)

		if !loaded[d.Year] {
			hs, err := tc.MarketHolidays(d.Year)
			if err != nil {
				return nil, err
			}
			holidays.add(hs...)
			loaded[d.Year] = true
		}

		if isWeekend(d) || holidays.has(d) {
			continue
		}
		out = append(out, last)
	}
	return out, nil
}

// LastMarketOpenTime steps dt back one day at a time until it lands on a
// weekday that is not a public holiday, and returns that date at 21:00:00
// in dt's location.
//
// The check uses the full public-holiday list, not MarketHolidays, so
// days such as Columbus Day or Veterans Day are skipped here even though
// the market trades on them.
func (tc *TradingCalendar) LastMarketOpenTime(dt time.Time) (time.Time, error) {
	loaded := make(map[int]bool)
	holidays := dateSet{}

	for {
		d := civil.DateOf(dt)
		if isWeekend(d) {
			dt = dt.AddDate(0, 0, -1)
			continue
		}

		if !loaded[d.Year] {
			hs, err := tc.source.Holidays(d.Year)
			if err != nil {
				return time.Time{}, fmt.Errorf("public holidays %d: %w", d.Year, err)
			}
			for _, h := range hs {
				holidays.add(h.Date)
			}
			loaded[d.Year] = true
		}
		if holidays.has(d) {
			dt = dt.AddDate(0, 0, -1)
			continue
		}

		return time.Date(d.Year, d.Month, d.Day, lastOpenMarkerHour, 0, 0, 0, dt.Location()), nil
	}
}

// Sessions returns every trading date in [start, end].
func (tc *TradingCalendar) Sessions(start, end civil.Date) ([]civil.Date, error) {
	var out []civil.Date
	if end.Before(start) {
		return out, nil
	}

	holidays := dateSet{}
	for y := start.Year; y <= end.Year; y++ {
		hs, err := tc.MarketHolidays(y)
		if err != nil {
			return nil, err
		}
		holidays.add(hs...)
	}

	for d := start; !d.After(end); d = d.AddDays(1) {
		if isWeekend(d) || holidays.has(d) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func timeOfDay(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
}
