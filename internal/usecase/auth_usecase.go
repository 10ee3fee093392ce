package usecase

import (
	"context"
	"errors"
	"net/http"

	"moondev-backend/internal/domain"
	"moondev-backend/pkg/apperror"
)

type authUsecase struct {
	userRepo domain.UserRepository
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(userRepo domain.UserRepository) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo}
}

// EnsureUserExists upserts the local row for an authenticated identity.
// New accounts default to the developer role; evaluators are promoted
// out of band.
func (uc *authUsecase) EnsureUserExists(ctx context.Context, userID, email string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	user = &domain.User{
		ID:    userID,
		Email: email,
		Role:  domain.RoleDeveloper,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		// Concurrent first login can insert the row between our read
		// and write; re-read instead of failing the login.
		existing, getErr := uc.userRepo.GetByID(ctx, userID)
		if getErr == nil {
			return existing, nil
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

// GetCurrentUser loads the user row behind a verified token. The role
// is always read fresh from the database, never trusted from claims.
func (uc *authUsecase) GetCurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Wrap the sentinel so callers can tell a missing row apart
			// from a store outage.
			return nil, apperror.New(http.StatusNotFound, "User not found", err)
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}
