package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/lifeflow/blood-bank/internal/core/domain"
)

func seedDonor(repo *stubDonorRepo, phone, name, group, city string, amount float64) *domain.Donor {
	registered := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	d := &domain.Donor{
		Phone:      phone,
		Name:       name,
		BloodGroup: group,
		City:       city,
		Amount:     amount,
		CreatedAt:  registered,
		UpdatedAt:  registered,
	}
	repo.donors[phone] = d
	return d
}

func TestDonationService_Donate_AccumulatesAmount(t *testing.T) {
	repo := newStubDonorRepo()
	seedDonor(repo, "555", "JANE", "A+", "NYC", 10)
	svc := NewDonationService(repo, discardLogger)

	if err := svc.Donate(context.Background(), "555", 2.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.donors["555"]
	if stored.Amount != 12.5 {
		t.Errorf("expected amount 12.5, got %v", stored.Amount)
	}
	if !stored.UpdatedAt.After(stored.CreatedAt) {
		t.Error("updated_at must move past created_at on the first donation")
	}
}

func TestDonationService_Donate_RejectsNonPositive(t *testing.T) {
	cases := []struct {
		name   string
		amount float64
	}{
		{"zero", 0},
		{"negative", -5},
		{"nan", math.NaN()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newStubDonorRepo()
			donor := seedDonor(repo, "555", "JANE", "A+", "NYC", 10)
			before := donor.UpdatedAt
			svc := NewDonationService(repo, discardLogger)

			err := svc.Donate(context.Background(), "555", tc.amount)
			if !errors.Is(err, domain.ErrInvalidAmount) {
				t.Fatalf("expected ErrInvalidAmount, got %v", err)
			}
			if repo.donors["555"].Amount != 10 {
				t.Errorf("rejected donation must not change amount, got %v", repo.donors["555"].Amount)
			}
			if !repo.donors["555"].UpdatedAt.Equal(before) {
				t.Error("rejected donation must not bump updated_at")
			}
		})
	}
}

func TestDonationService_Donate_TotalIsSumOfAccepted(t *testing.T) {
	repo := newStubDonorRepo()
	seedDonor(repo, "555", "JANE", "A+", "NYC", 0)
	svc := NewDonationService(repo, discardLogger)

	for _, amount := range []float64{10, -5, 2.5, 0, 7} {
		_ = svc.Donate(context.Background(), "555", amount)
	}

	if got := repo.donors["555"].Amount; got != 19.5 {
		t.Errorf("expected sum of accepted amounts 19.5, got %v", got)
	}
}

func TestDonationService_Donate_UnknownDonor(t *testing.T) {
	repo := newStubDonorRepo()
	svc := NewDonationService(repo, discardLogger)

	err := svc.Donate(context.Background(), "000", 5)
	if !errors.Is(err, domain.ErrDonorNotFound) {
		t.Errorf("expected ErrDonorNotFound, got %v", err)
	}
}

func TestDonationService_Profile_NeverDonated(t *testing.T) {
	repo := newStubDonorRepo()
	seedDonor(repo, "555", "JANE", "A+", "NYC", 0)
	svc := NewDonationService(repo, discardLogger)

	profile, err := svc.Profile(context.Background(), "555")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Name != "JANE" || profile.Amount != 0 {
		t.Errorf("unexpected profile: %+v", profile)
	}
	if profile.LastDonated != nil {
		t.Errorf("expected nil LastDonated for a donor who never donated, got %v", profile.LastDonated)
	}
}

func TestDonationService_Profile_AfterDonation(t *testing.T) {
	repo := newStubDonorRepo()
	seedDonor(repo, "555", "JANE", "A+", "NYC", 0)
	svc := NewDonationService(repo, discardLogger)

	if err := svc.Donate(context.Background(), "555", 3); err != nil {
		t.Fatalf("donate failed: %v", err)
	}

	profile, err := svc.Profile(context.Background(), "555")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Amount != 3 {
		t.Errorf("expected amount 3, got %v", profile.Amount)
	}
	if profile.LastDonated == nil {
		t.Fatal("expected LastDonated after a donation")
	}
	if !profile.LastDonated.Equal(repo.donors["555"].UpdatedAt) {
		t.Errorf("LastDonated %v does not match stored updated_at %v",
			profile.LastDonated, repo.donors["555"].UpdatedAt)
	}
}

func TestDonationService_Profile_UnknownDonor(t *testing.T) {
	repo := newStubDonorRepo()
	svc := NewDonationService(repo, discardLogger)

	if _, err := svc.Profile(context.Background(), "000"); !errors.Is(err, domain.ErrDonorNotFound) {
		t.Errorf("expected ErrDonorNotFound, got %v", err)
	}
}
