package jobs

import (
	"vehicle-rental-backend/internal/logger"
)

// SweepAbandonedBookings closes booking drafts idle past the configured TTL.
// Nothing is written to the registry. Runners without a booking service
// skip it.
func (jr *JobRunner) SweepAbandonedBookings() {
	jr.runWithRecovery("SweepAbandonedBookings", func() {
		if !jr.SweepsBookings() {
			logger.Info("No booking service, sweep skipped")
			return
		}
		closed := jr.services.Bookings.SweepIdle(jr.now())
		logger.Info("Swept abandoned bookings",
			"closed", closed,
			"remaining", jr.services.Bookings.OpenCount(),
			"ttl_minutes", jr.config.Booking.DraftTTLMinutes,
		)
	})
}

// SweepsBookings reports whether this runner holds live booking drafts.
func (jr *JobRunner) SweepsBookings() bool {
	return jr.services.Bookings != nil
}
