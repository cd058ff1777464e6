package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/kirinyoku/tixmarket/internal/clock"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/repository"
)

type Service struct {
	store  repository.Store
	clock  clock.Clock
	logger *slog.Logger
}

func New(store repository.Store, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{store: store, clock: clk, logger: logger}
}

type Profile struct {
	Email    string
	Name     string
	PhotoURL string
}

// Register stores a new account with the user role. Registering an email
// that already exists returns the stored account and created=false.
func (s *Service) Register(ctx context.Context, p Profile) (u *domain.User, created bool, err error) {
	const op = "service.account.Register"

	email, err := normalizeEmail(p.Email)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	if existing, err := s.store.Users().GetByEmail(ctx, email); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	u = &domain.User{
		Email:     email,
		Name:      strings.TrimSpace(p.Name),
		PhotoURL:  strings.TrimSpace(p.PhotoURL),
		Role:      domain.RoleUser,
		CreatedAt: s.clock.Now(),
	}

	if err := s.store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			existing, gerr := s.store.Users().GetByEmail(ctx, email)
			if gerr != nil {
				return nil, false, fmt.Errorf("%s: %w", op, gerr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("user registered", slog.String("user_id", u.ID.String()))

	return u, true, nil
}

// ByEmail resolves an account. It backs both the role lookup endpoint and
// session authentication.
func (s *Service) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "service.account.ByEmail"

	u, err := s.store.Users().GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", domain.ValidationError{Field: "email", Reason: "invalid address"}
	}
	return strings.ToLower(addr.Address), nil
}
