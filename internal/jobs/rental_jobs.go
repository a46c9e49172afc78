package jobs

import (
	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/utils"
)

// ReportRentalStats logs the history totals and any active rental whose
// return date has already passed. Statuses are left alone.
func (jr *JobRunner) ReportRentalStats() {
	jr.runWithRecovery("ReportRentalStats", func() {
		stats := jr.services.History.Stats()
		logger.Info("Rental stats",
			"total_spent", stats.TotalSpent,
			"active", stats.ActiveCount,
			"completed", stats.CompletedCount,
			"cancelled", stats.CancelledCount,
		)

		today := utils.DateOf(jr.now())
		for _, r := range jr.overdue(today) {
			logger.Warn("Active rental past return date", "rental_id", r.ID, "model", r.Model, "end_date", r.EndDate)
		}
	})
}

func (jr *JobRunner) overdue(today utils.Date) []domain.RentalRecord {
	var out []domain.RentalRecord
	for _, r := range jr.services.Rentals.All() {
		if r.Status != domain.RentalStatusActive {
			continue
		}
		end, err := utils.ParseDate(r.EndDate)
		if err != nil {
			continue
		}
		if end.Before(today) {
			out = append(out, r)
		}
	}
	return out
}
