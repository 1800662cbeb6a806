package reports

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Periodicity controls how the reporting window is split into columns.
type Periodicity string

const (
	PeriodicityMonthly    Periodicity = "Monthly"
	PeriodicityQuarterly  Periodicity = "Quarterly"
	PeriodicityHalfYearly Periodicity = "Half-Yearly"
	PeriodicityYearly     Periodicity = "Yearly"
)

// Months returns the number of months covered by one period.
func (p Periodicity) Months() int {
	switch p {
	case PeriodicityMonthly:
		return 1
	case PeriodicityQuarterly:
		return 3
	case PeriodicityHalfYearly:
		return 6
	case PeriodicityYearly:
		return 12
	}
	return 0
}

// Filter bases for the period window.
const (
	BasedOnFiscalYear = "Fiscal Year"
	BasedOnDateRange  = "Date Range"
)

var (
	// ErrFiscalYearNotFound indicates a referenced fiscal year is unknown.
	ErrFiscalYearNotFound = errors.New("reports: fiscal year not found")
	// ErrInvalidPeriodRange indicates an empty or reversed reporting window.
	ErrInvalidPeriodRange = errors.New("reports: invalid period range")
)

// FiscalYear is a named accounting year.
type FiscalYear struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

// Period is one report column.
type Period struct {
	Key              string    `json:"key"`
	Label            string    `json:"label"`
	FromDate         time.Time `json:"from_date"`
	ToDate           time.Time `json:"to_date"`
	YearStartDate    time.Time `json:"year_start_date"`
	YearEndDate      time.Time `json:"year_end_date"`
	ToDateFiscalYear string    `json:"to_date_fiscal_year,omitempty"`
}

// PeriodParams selects the reporting window.
type PeriodParams struct {
	BasedOn        string
	FromFiscalYear string
	ToFiscalYear   string
	StartDate      time.Time
	EndDate        time.Time
	Periodicity    Periodicity
	Accumulated    bool
	FiscalYears    []FiscalYear
}

// BuildPeriods splits the reporting window into periods of the requested periodicity.
func BuildPeriods(p PeriodParams) ([]Period, error) {
	step := p.Periodicity.Months()
	if step == 0 {
		return nil, fmt.Errorf("reports: unknown periodicity %q", p.Periodicity)
	}

	var yearStart, yearEnd time.Time
	switch p.BasedOn {
	case BasedOnDateRange:
		yearStart, yearEnd = truncateDay(p.StartDate), truncateDay(p.EndDate)
	case BasedOnFiscalYear, "":
		from, ok := findFiscalYear(p.FiscalYears, p.FromFiscalYear)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrFiscalYearNotFound, p.FromFiscalYear)
		}
		to, ok := findFiscalYear(p.FiscalYears, p.ToFiscalYear)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrFiscalYearNotFound, p.ToFiscalYear)
		}
		yearStart, yearEnd = truncateDay(from.StartDate), truncateDay(to.EndDate)
	default:
		return nil, fmt.Errorf("reports: unknown filter basis %q", p.BasedOn)
	}
	if yearStart.IsZero() || yearEnd.IsZero() || yearEnd.Before(yearStart) {
		return nil, ErrInvalidPeriodRange
	}

	months := (yearEnd.Year()*12 + int(yearEnd.Month())) - (yearStart.Year()*12 + int(yearStart.Month())) + 1
	count := (months + step - 1) / step

	periods := make([]Period, 0, count)
	start := yearStart
	for i := 0; i < count; i++ {
		var next time.Time
		if i == 0 && p.BasedOn == BasedOnDateRange {
			next = addMonths(firstOfMonth(start), step)
		} else {
			next = addMonths(start, step)
		}
		to := next.AddDate(0, 0, -1)
		if to.After(yearEnd) {
			to = yearEnd
		}
		periods = append(periods, Period{
			FromDate:         start,
			ToDate:           to,
			YearStartDate:    yearStart,
			YearEndDate:      yearEnd,
			ToDateFiscalYear: fiscalYearOf(p.FiscalYears, to),
		})
		start = next
		if to.Equal(yearEnd) {
			break
		}
	}

	for i := range periods {
		pd := &periods[i]
		pd.Key = strings.ToLower(pd.ToDate.Format("Jan_2006"))
		switch {
		case p.Periodicity == PeriodicityMonthly && !p.Accumulated:
			pd.Label = pd.ToDate.Format("Jan 2006")
		case !p.Accumulated:
			pd.Label = periodLabel(p.Periodicity, pd.FromDate, pd.ToDate)
		default:
			pd.Label = periodLabel(p.Periodicity, periods[0].FromDate, pd.ToDate)
		}
	}
	return periods, nil
}

func periodLabel(p Periodicity, from, to time.Time) string {
	if p == PeriodicityYearly {
		if from.Year() == to.Year() {
			return from.Format("2006")
		}
		return from.Format("2006") + "-" + to.Format("2006")
	}
	return from.Format("Jan 06") + "-" + to.Format("Jan 06")
}

func findFiscalYear(years []FiscalYear, name string) (FiscalYear, bool) {
	for _, fy := range years {
		if fy.Name == name {
			return fy, true
		}
	}
	return FiscalYear{}, false
}

// FiscalYearStart returns the start of the fiscal year containing date.
func FiscalYearStart(years []FiscalYear, date time.Time) (time.Time, bool) {
	for _, fy := range years {
		if !date.Before(truncateDay(fy.StartDate)) && !date.After(truncateDay(fy.EndDate)) {
			return truncateDay(fy.StartDate), true
		}
	}
	return time.Time{}, false
}

func fiscalYearOf(years []FiscalYear, date time.Time) string {
	for _, fy := range years {
		if !date.Before(truncateDay(fy.StartDate)) && !date.After(truncateDay(fy.EndDate)) {
			return fy.Name
		}
	}
	return ""
}

// addMonths moves t by n months, clamping the day to the target month's length.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
