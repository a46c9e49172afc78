package service

import (
	"context"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/security"

	"github.com/stretchr/testify/mock"
)

type MockRentalRegistry struct {
	mock.Mock
}

func (m *MockRentalRegistry) Create(ctx context.Context, nr domain.NewRental) (domain.RentalRecord, error) {
	args := m.Called(ctx, nr)
	return args.Get(0).(domain.RentalRecord), args.Error(1)
}

func (m *MockRentalRegistry) Active() (domain.RentalRecord, bool) {
	args := m.Called()
	return args.Get(0).(domain.RentalRecord), args.Bool(1)
}

func (m *MockRentalRegistry) SetStatus(ctx context.Context, id string, status domain.RentalStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockRentalRegistry) All() []domain.RentalRecord {
	args := m.Called()
	return args.Get(0).([]domain.RentalRecord)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetCurrent(ctx context.Context) (*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) SaveCurrent(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) DeleteCurrent(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GenerateAccessToken(user domain.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) ValidateToken(tokenString string) (*security.UserClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.UserClaims), args.Error(1)
}
