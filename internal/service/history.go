package service

import (
	"sort"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/utils"
)

type HistoryFilter string

const (
	HistoryFilterAll       HistoryFilter = "all"
	HistoryFilterActive    HistoryFilter = "active"
	HistoryFilterCompleted HistoryFilter = "completed"
	HistoryFilterCancelled HistoryFilter = "cancelled"
)

type HistorySort string

const (
	HistorySortDate  HistorySort = "date"
	HistorySortPrice HistorySort = "price"
)

type RentalStats struct {
	// TotalSpent sums the price of completed rentals only
	TotalSpent     int `json:"totalSpent"`
	ActiveCount    int `json:"activeCount"`
	CompletedCount int `json:"completedCount"`
	CancelledCount int `json:"cancelledCount"`
}

type historyService struct {
	rentals RentalLister
}

func NewHistoryService(rentals RentalLister) HistoryService {
	return &historyService{rentals: rentals}
}

// List filters by status then sorts newest first by start date, or most
// expensive first. Ties keep registry order.
func (s *historyService) List(filter HistoryFilter, sortBy HistorySort) ([]domain.RentalRecord, error) {
	if filter == "" {
		filter = HistoryFilterAll
	}
	if sortBy == "" {
		sortBy = HistorySortDate
	}

	var status domain.RentalStatus
	switch filter {
	case HistoryFilterAll:
	case HistoryFilterActive, HistoryFilterCompleted, HistoryFilterCancelled:
		status = domain.RentalStatus(filter)
	default:
		return nil, ErrInvalidInput
	}
	if sortBy != HistorySortDate && sortBy != HistorySortPrice {
		return nil, ErrInvalidInput
	}

	out := []domain.RentalRecord{}
	for _, r := range s.rentals.All() {
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if sortBy == HistorySortPrice {
			return out[i].Price > out[j].Price
		}
		return utils.CompareDateStrings(out[i].StartDate, out[j].StartDate) > 0
	})
	return out, nil
}

func (s *historyService) Stats() RentalStats {
	var st RentalStats
	for _, r := range s.rentals.All() {
		switch r.Status {
		case domain.RentalStatusActive:
			st.ActiveCount++
		case domain.RentalStatusCompleted:
			st.CompletedCount++
			st.TotalSpent += r.Price
		case domain.RentalStatusCancelled:
			st.CancelledCount++
		}
	}
	return st
}
