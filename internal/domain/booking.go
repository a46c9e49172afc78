package domain

import "strings"

type BookingStage string

const (
	BookingStageDetails BookingStage = "details"
	BookingStagePayment BookingStage = "payment"
	BookingStageSuccess BookingStage = "success"
	BookingStageClosed  BookingStage = "closed"
)

// BookingDraft is the user's in-progress reservation.
type BookingDraft struct {
	Offering     VehicleOffering `json:"vehicle"`
	Unit         DurationUnit    `json:"duration"`
	PickupDate   string          `json:"pickupDate"`
	ReturnDate   string          `json:"returnDate"`
	FromLocation string          `json:"fromLocation"`
	ToLocation   string          `json:"toLocation"`
}

// Complete reports whether every field required to leave the details stage
// is filled in. Dates are not cross-checked.
func (d BookingDraft) Complete() bool {
	for _, v := range []string{d.PickupDate, d.ReturnDate, d.FromLocation, d.ToLocation} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// PriceQuote is the price shown to the user for one rental period.
type PriceQuote struct {
	Unit  DurationUnit `json:"unit"`
	Base  int          `json:"base"`
	Tax   int          `json:"tax"`
	Total int          `json:"total"`
}
