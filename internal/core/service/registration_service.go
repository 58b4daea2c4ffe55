package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lifeflow/blood-bank/internal/core/domain"
	"github.com/lifeflow/blood-bank/internal/core/ports"
	"github.com/lifeflow/blood-bank/internal/pkg/metrics"
)

// RegistrationService implements create-or-resolve registration keyed on the
// donor's phone number.
type RegistrationService struct {
	repo     ports.DonorRepository
	sessions ports.SessionService
	logger   zerolog.Logger
}

func NewRegistrationService(repo ports.DonorRepository, sessions ports.SessionService, logger zerolog.Logger) *RegistrationService {
	return &RegistrationService{repo: repo, sessions: sessions, logger: logger}
}

// Register inserts a new donor for an unseen phone number. A phone that is
// already registered makes the call an idempotent lookup: the stored record
// is not updated from the new submission. Both paths return an identity
// token for the phone.
func (s *RegistrationService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	group, err := domain.NewBloodGroup(in.Blood, in.Rh)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	existing, err := s.repo.FindByPhone(ctx, in.Phone)
	if err == nil {
		metrics.RegistrationsTotal.WithLabelValues("existing").Inc()
		return s.result(existing.Phone, false)
	}
	if !errors.Is(err, domain.ErrDonorNotFound) {
		return nil, fmt.Errorf("register: lookup donor: %w", err)
	}

	amount := in.Amount
	if amount <= 0 {
		amount = 0
	}

	now := time.Now().UTC()
	donor := &domain.Donor{
		Phone:      in.Phone,
		Name:       strings.ToUpper(in.Name),
		BloodGroup: group,
		City:       strings.ToUpper(in.City),
		Address:    in.Address,
		Amount:     amount,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, donor); err != nil {
		// Lost a concurrent registration race for the same phone: the unique
		// index kept the store consistent, so proceed as a normal lookup.
		if errors.Is(err, domain.ErrDonorExists) {
			s.logger.Debug().Str("phone", in.Phone).Msg("registration race, resolving existing donor")
			metrics.RegistrationsTotal.WithLabelValues("existing").Inc()
			return s.result(in.Phone, false)
		}
		return nil, fmt.Errorf("register: insert donor: %w", err)
	}

	s.logger.Info().
		Str("phone", donor.Phone).
		Str("blood_group", donor.BloodGroup).
		Str("city", donor.City).
		Msg("donor registered")
	metrics.RegistrationsTotal.WithLabelValues("created").Inc()

	return s.result(donor.Phone, true)
}

func (s *RegistrationService) result(phone string, created bool) (*ports.RegisterResult, error) {
	token, err := s.sessions.Issue(phone)
	if err != nil {
		return nil, fmt.Errorf("register: issue token: %w", err)
	}
	return &ports.RegisterResult{Phone: phone, Token: token, Created: created}, nil
}
