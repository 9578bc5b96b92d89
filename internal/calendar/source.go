package calendar

import (
	"time"

	"cloud.google.com/go/civil"
	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// Holiday is a single dated entry from a public-holiday source.
type Holiday struct {
	Date civil.Date `json:"date"`
	Name string     `json:"name"`
}

// HolidaySource returns the public holidays whose date falls in year,
// including "(Observed)" entries for weekend shifts.
type HolidaySource interface {
	Holidays(year int) ([]Holiday, error)
}

// observedSuffix is appended to a holiday name for its shifted date.
const observedSuffix = " (Observed)"

type federalHoliday struct {
	name string
	def  *cal.Holiday
}

// federal lists US federal holidays with the names the market filter
// matches against.
var federal = []federalHoliday{
	{"New Year's Day", us.NewYear},
	{"Martin Luther King Jr. Day", us.MlkDay},
	{"Washington's Birthday", us.PresidentsDay},
	{"Memorial Day", us.MemorialDay},
	{"Juneteenth National Independence Day", us.Juneteenth},
	{"Independence Day", us.IndependenceDay},
	{"Labor Day", us.LaborDay},
	{"Columbus Day", us.ColumbusDay},
	{"Veterans Day", us.VeteransDay},
	{"Thanksgiving", us.ThanksgivingDay},
	{"Christmas Day", us.ChristmasDay},
}

// FederalHolidays is the default HolidaySource, backed by the federal
// holiday definitions in github.com/rickar/cal/v2/us.
type FederalHolidays struct{}

// Holidays returns the federal holidays dated in year. A holiday whose
// observed date lands in a neighbouring year (New Year's Day on a Saturday
// is observed on the preceding December 31) is reported under the year of
// that date.
func (FederalHolidays) Holidays(year int) ([]Holiday, error) {
	var out []Holiday
	for _, y := range []int{year, year + 1} {
		for _, fh := range federal {
			actual, observed := fh.def.Calc(y)
			if actual.IsZero() {
				continue
			}
			if actual.Year() == year {
				out = append(out, Holiday{Date: civil.DateOf(actual), Name: fh.name})
			}
			if observed.IsZero() || sameDay(actual, observed) {
				continue
			}
			if observed.Year() == year {
				out = append(out, Holiday{Date: civil.DateOf(observed), Name: fh.name + observedSuffix})
			}
		}
	}
	return out, nil
}

func sameDay(a, b time.Time) bool {
	return civil.DateOf(a) == civil.DateOf(b)
}
