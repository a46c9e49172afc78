package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository"
	"vehicle-rental-backend/internal/security"
)

type sessionService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
	now      func() time.Time
}

func NewSessionService(userRepo repository.UserRepository, tokens security.TokenManager) SessionService {
	return &sessionService{
		userRepo: userRepo,
		tokens:   tokens,
		now:      time.Now,
	}
}

// SignIn stores name and email as the current user. There is no password
// check; the returned token only scopes later requests to this session.
func (s *sessionService) SignIn(ctx context.Context, name, email string) (*domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, "", fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}

	user := &domain.User{
		ID:    strconv.FormatInt(s.now().UnixMilli(), 10),
		Name:  name,
		Email: email,
	}
	if err := s.userRepo.SaveCurrent(ctx, user); err != nil {
		logger.ErrorContext(ctx, "Failed to save user", "error", err)
		return nil, "", err
	}

	token, err := s.tokens.GenerateAccessToken(*user)
	if err != nil {
		return nil, "", err
	}
	logger.InfoContext(ctx, "User signed in", "user_id", user.ID)
	return user, token, nil
}

func (s *sessionService) Current(ctx context.Context) (*domain.User, error) {
	user, err := s.userRepo.GetCurrent(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotSignedIn
	}
	if errors.Is(err, repository.ErrCorrupt) {
		logger.ErrorContext(ctx, "Stored user is corrupt, treating as signed out", "error", err)
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *sessionService) SignOut(ctx context.Context) error {
	if err := s.userRepo.DeleteCurrent(ctx); err != nil {
		return err
	}
	logger.InfoContext(ctx, "User signed out")
	return nil
}
