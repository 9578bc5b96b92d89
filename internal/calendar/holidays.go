package calendar

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// ErrMissingTableEntry is returned when a year falls outside the Good
// Friday table.
var ErrMissingTableEntry = errors.New("missing table entry")

// marketHolidayNames are the NYSE full-day closures that the public
// holiday source also carries. New Year's Day and Good Friday are added
// separately.
//
// https://www.nyse.com/markets/hours-calendars
var marketHolidayNames = []string{
	"Martin Luther King Jr. Day",
	"Washington's Birthday",
	"Memorial Day",
	"Independence Day",
	"Labor Day",
	"Thanksgiving",
	"Christmas Day",
}

// marketHolidayFilter holds marketHolidayNames plus their observed
// variants.
var marketHolidayFilter = func() map[string]struct{} {
	m := make(map[string]struct{}, 2*len(marketHolidayNames))
	for _, name := range marketHolidayNames {
		m[name] = struct{}{}
		m[name+observedSuffix] = struct{}{}
	}
	return m
}()

// goodFridays covers 2010 through 2030 only.
var goodFridays = map[int]civil.Date{
	2010: {Year: 2010, Month: time.April, Day: 2},
	2011: {Year: 2011, Month: time.April, Day: 22},
	2012: {Year: 2012, Month: time.April, Day: 6},
	2013: {Year: 2013, Month: time.March, Day: 29},
	2014: {Year: 2014, Month: time.April, Day: 18},
	2015: {Year: 2015, Month: time.April, Day: 3},
	2016: {Year: 2016, Month: time.March, Day: 25},
	2017: {Year: 2017, Month: time.April, Day: 14},
	2018: {Year: 2018, Month: time.March, Day: 30},
	2019: {Year: 2019, Month: time.April, Day: 19},
	2020: {Year: 2020, Month: time.April, Day: 10},
	2021: {Year: 2021, Month: time.April, Day: 2},
	2022: {Year: 2022, Month: time.April, Day: 15},
	2023: {Year: 2023, Month: time.April, Day: 7},
	2024: {Year: 2024, Month: time.March, Day: 29},
	2025: {Year: 2025, Month: time.April, Day: 18},
	2026: {Year: 2026, Month: time.April, Day: 3},
	2027: {Year: 2027, Month: time.March, Day: 26},
	2028: {Year: 2028, Month: time.April, Day: 14},
	2029: {Year: 2029, Month: time.March, Day: 30},
	2030: {Year: 2030, Month: time.April, Day: 19},
}

// GoodFriday returns the Good Friday date for year from the fixed table.
func GoodFriday(year int) (civil.Date, error) {
	d, ok := goodFridays[year]
	if !ok {
		return civil.Date{}, fmt.Errorf("good friday %d: %w", year, ErrMissingTableEntry)
	}
	return d, nil
}

// MarketHolidays returns the dates the US stock market is closed for the
// given years. The result may contain duplicates; treat it as a set.
//
// The public-holiday list is filtered to the NYSE holidays and their
// observed dates. New Year's Day is added unless it falls on a Saturday
// (the market stays open the Friday before); a Sunday New Year also closes
// the following Monday. Good Friday comes from a table covering
// 2010-2030, and any other year returns ErrMissingTableEntry.
func (tc *TradingCalendar) MarketHolidays(years ...int) ([]civil.Date, error) {
	var out []civil.Date
	for _, year := range years {
		hs, err := tc.source.Holidays(year)
		if err != nil {
			return nil, fmt.Errorf("public holidays %d: %w", year, err)
		}
		for _, h := range hs {
			if _, ok := marketHolidayFilter[h.Name]; ok {
				out = append(out, h.Date)
			}
		}
	}

	for _, year := range years {
		newYear := civil.Date{Year: year, Month: time.January, Day: 1}
		switch weekday(newYear) {
		case time.Saturday:
			// Not observed; the market trades the Friday before.
		case time.Sunday:
			out = append(out, newYear, newYear.AddDays(1))
		default:
			out = append(out, newYear)
		}
	}

	for _, year := range years {
		gf, err := GoodFriday(year)
		if err != nil {
			return nil, err
		}
		out = append(out, gf)
	}

	return out, nil
}

// PublicHolidays returns the unfiltered public-holiday list for the given
// years, as reported by the calendar's HolidaySource.
func (tc *TradingCalendar) PublicHolidays(years ...int) ([]Holiday, error) {
	var out []Holiday
	for _, year := range years {
		hs, err := tc.source.Holidays(year)
		if err != nil {
			return nil, fmt.Errorf("public holidays %d: %w", year, err)
		}
		out = append(out, hs...)
	}
	return out, nil
}

// dateSet is a membership set of dates.
type dateSet map[civil.Date]struct{}

func (s dateSet) add(ds ...civil.Date) {
	for _, d := range ds {
		s[d] = struct{}{}
	}
}

func (s dateSet) has(d civil.Date) bool {
	_, ok := s[d]
	return ok
}

func weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

func isWeekend(d civil.Date) bool {
	wd := weekday(d)
	return wd == time.Saturday || wd == time.Sunday
}
