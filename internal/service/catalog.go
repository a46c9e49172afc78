package service

import (
	"context"
	"errors"
	"strings"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/repository"
	"vehicle-rental-backend/internal/utils"
)

type catalogService struct {
	vehicleRepo repository.VehicleRepository
}

func NewCatalogService(vehicleRepo repository.VehicleRepository) CatalogService {
	return &catalogService{vehicleRepo: vehicleRepo}
}

// Search filters by case-insensitive name substring and by category
// ("all" or empty matches every category). Catalog order is kept.
func (s *catalogService) Search(ctx context.Context, query string, category string) ([]domain.VehicleOffering, error) {
	vehicles, err := s.vehicleRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	category = strings.ToLower(strings.TrimSpace(category))
	if category != "" && category != "all" && !domain.VehicleCategory(category).Valid() {
		return nil, ErrInvalidInput
	}

	out := []domain.VehicleOffering{}
	for _, v := range vehicles {
		if query != "" && !strings.Contains(strings.ToLower(v.Name), query) {
			continue
		}
		if category != "" && category != "all" && string(v.Category) != category {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *catalogService) Quote(ctx context.Context, vehicleID string, unit domain.DurationUnit) (domain.PriceQuote, error) {
	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.PriceQuote{}, ErrVehicleNotFound
	}
	if err != nil {
		return domain.PriceQuote{}, err
	}
	return utils.CalculatePrice(*v, unit), nil
}
