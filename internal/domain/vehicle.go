package domain

type VehicleCategory string

const (
	VehicleCategoryBike VehicleCategory = "bike"
	VehicleCategoryCar  VehicleCategory = "car"
)

// Valid reports whether c is one of the known categories.
func (c VehicleCategory) Valid() bool {
	return c == VehicleCategoryBike || c == VehicleCategoryCar
}

type DurationUnit string

const (
	DurationUnitDay   DurationUnit = "day"
	DurationUnitWeek  DurationUnit = "week"
	DurationUnitMonth DurationUnit = "month"
)

// VehicleOffering is a rentable vehicle from the catalog. Rates are whole
// currency units.
type VehicleOffering struct {
	ID          string          `json:"id" yaml:"id"`
	Category    VehicleCategory `json:"type" yaml:"type"`
	Name        string          `json:"name" yaml:"name"`
	Image       string          `json:"image" yaml:"image"`
	DailyRate   int             `json:"dailyRate" yaml:"daily_rate"`
	WeeklyRate  int             `json:"weeklyRate" yaml:"weekly_rate"`
	MonthlyRate int             `json:"monthlyRate" yaml:"monthly_rate"`
	Features    []string        `json:"features" yaml:"features"`
	Available   bool            `json:"available" yaml:"available"`
}
