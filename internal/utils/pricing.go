package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"vehicle-rental-backend/internal/domain"
)

// TaxPercent is applied to the base rate of every quote.
const TaxPercent = 10

// Date represents a calendar date
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate converts a yyyy-mm-dd formatted string into a Date struct
func ParseDate(dateStr string) (Date, error) {
	parts := strings.Split(dateStr, "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd")
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Date{}, fmt.Errorf("invalid year: %v", err)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Date{}, fmt.Errorf("invalid month: %v", err)
	}

	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return Date{}, fmt.Errorf("invalid day: %v", err)
	}

	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("month must be between 1 and 12")
	}

	if day < 1 || day > 31 {
		return Date{}, fmt.Errorf("day must be between 1 and 31")
	}

	return Date{Year: year, Month: month, Day: day}, nil
}

// DateOf returns the calendar date of t in its own location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// CompareDateStrings orders two yyyy-mm-dd strings. Unparseable values sort
// before every valid date and compare equal to each other.
func CompareDateStrings(a, b string) int {
	da, errA := ParseDate(a)
	db, errB := ParseDate(b)
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	case da.Before(db):
		return -1
	case db.Before(da):
		return 1
	}
	return 0
}

// RateFor returns the offering's rate for one period of the given unit.
func RateFor(offering domain.VehicleOffering, unit domain.DurationUnit) (domain.DurationUnit, int) {
	switch unit {
	case domain.DurationUnitWeek:
		return domain.DurationUnitWeek, offering.WeeklyRate
	case domain.DurationUnitMonth:
		return domain.DurationUnitMonth, offering.MonthlyRate
	case domain.DurationUnitDay:
		return domain.DurationUnitDay, offering.DailyRate
	default:
		// Default to day unit if not recognised
		return domain.DurationUnitDay, offering.DailyRate
	}
}

// DurationLabel is the duration text stored on a committed rental.
func DurationLabel(unit domain.DurationUnit) string {
	priced, _ := RateFor(domain.VehicleOffering{}, unit)
	return string(priced)
}

// CalculateTax returns TaxPercent of base rounded half up to a whole unit.
func CalculateTax(base int) int {
	return floorDiv(base*TaxPercent+50, 100)
}

// CalculatePrice quotes one period of the offering at the given unit.
func CalculatePrice(offering domain.VehicleOffering, unit domain.DurationUnit) domain.PriceQuote {
	priced, base := RateFor(offering, unit)
	tax := CalculateTax(base)
	return domain.PriceQuote{
		Unit:  priced,
		Base:  base,
		Tax:   tax,
		Total: base + tax,
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
