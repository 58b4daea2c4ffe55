package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/lifeflow/blood-bank/internal/core/domain"
	"github.com/lifeflow/blood-bank/internal/core/ports"
	"github.com/lifeflow/blood-bank/internal/pkg/metrics"
)

// DonationService accumulates pledged amounts onto existing donor records.
type DonationService struct {
	repo   ports.DonorRepository
	logger zerolog.Logger
}

func NewDonationService(repo ports.DonorRepository, logger zerolog.Logger) *DonationService {
	return &DonationService{repo: repo, logger: logger}
}

// Donate adds amount to the donor's running total. The accumulation is a
// single atomic increment at the store, so concurrent donations for the same
// donor are never lost. Rejected amounts leave no state change behind.
func (s *DonationService) Donate(ctx context.Context, phone string, amount float64) error {
	if math.IsNaN(amount) || amount <= 0 {
		metrics.DonationsTotal.WithLabelValues("rejected").Inc()
		return domain.ErrInvalidAmount
	}

	if err := s.repo.AddAmount(ctx, phone, amount, time.Now().UTC()); err != nil {
		if errors.Is(err, domain.ErrDonorNotFound) {
			// Should only happen via stale or tampered identity tokens.
			s.logger.Error().Str("phone", phone).Msg("donation for unknown donor")
			return err
		}
		return fmt.Errorf("donate: %w", err)
	}

	s.logger.Info().Str("phone", phone).Float64("amount", amount).Msg("donation recorded")
	metrics.DonationsTotal.WithLabelValues("accepted").Inc()
	metrics.DonationAmountTotal.Add(amount)
	return nil
}

// Profile returns the donor's own view. LastDonated is nil until the first
// accumulation bumps the updated timestamp past the created one.
func (s *DonationService) Profile(ctx context.Context, phone string) (*ports.DonorProfile, error) {
	donor, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, domain.ErrDonorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("profile: %w", err)
	}

	profile := &ports.DonorProfile{Name: donor.Name, Amount: donor.Amount}
	if donor.HasDonated() {
		last := donor.UpdatedAt
		profile.LastDonated = &last
	}
	return profile, nil
}
