package memory

import (
	"context"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/repository"
)

// DefaultVehicles is the catalog served when none is configured.
func DefaultVehicles() []domain.VehicleOffering {
	return []domain.VehicleOffering{
		{
			ID:          "1",
			Category:    domain.VehicleCategoryBike,
			Name:        "Honda CB250R",
			Image:       "https://images.pexels.com/photos/2116475/pexels-photo-2116475.jpeg",
			DailyRate:   25,
			WeeklyRate:  150,
			MonthlyRate: 500,
			Features:    []string{"GPS Tracking", "Bluetooth", "Safety Gear"},
			Available:   true,
		},
		{
			ID:          "2",
			Category:    domain.VehicleCategoryBike,
			Name:        "Yamaha MT-07",
			Image:       "https://images.pexels.com/photos/1119796/pexels-photo-1119796.jpeg",
			DailyRate:   35,
			WeeklyRate:  200,
			MonthlyRate: 650,
			Features:    []string{"Sport Mode", "ABS", "LED Lights"},
			Available:   true,
		},
		{
			ID:          "3",
			Category:    domain.VehicleCategoryCar,
			Name:        "Toyota Camry",
			Image:       "https://images.pexels.com/photos/116675/pexels-photo-116675.jpeg",
			DailyRate:   45,
			WeeklyRate:  280,
			MonthlyRate: 1000,
			Features:    []string{"Auto Transmission", "AC", "GPS"},
			Available:   true,
		},
		{
			ID:          "4",
			Category:    domain.VehicleCategoryCar,
			Name:        "BMW X3",
			Image:       "https://images.pexels.com/photos/337909/pexels-photo-337909.jpeg",
			DailyRate:   85,
			WeeklyRate:  500,
			MonthlyRate: 1800,
			Features:    []string{"Luxury Interior", "4WD", "Premium Audio"},
			Available:   false,
		},
	}
}

type vehicleRepository struct {
	vehicles []domain.VehicleOffering
}

// NewVehicleRepository serves a fixed catalog in the given order.
func NewVehicleRepository(vehicles []domain.VehicleOffering) repository.VehicleRepository {
	cp := make([]domain.VehicleOffering, len(vehicles))
	for i, v := range vehicles {
		cp[i] = copyOffering(v)
	}
	return &vehicleRepository{vehicles: cp}
}

func (r *vehicleRepository) List(ctx context.Context) ([]domain.VehicleOffering, error) {
	out := make([]domain.VehicleOffering, len(r.vehicles))
	for i, v := range r.vehicles {
		out[i] = copyOffering(v)
	}
	return out, nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*domain.VehicleOffering, error) {
	for _, v := range r.vehicles {
		if v.ID == id {
			out := copyOffering(v)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func copyOffering(v domain.VehicleOffering) domain.VehicleOffering {
	v.Features = append([]string(nil), v.Features...)
	return v
}
