package ports

import (
	"context"
	"time"
)

// SessionTTL is the validity window of an issued identity token. The cookie
// carrying the token uses the same max-age so both expire together.
const SessionTTL = 2 * 24 * time.Hour

// RegisterInput carries a candidate donor profile as submitted by the client.
// Blood and Rh arrive as separate fields and are combined into the stored
// blood group.
type RegisterInput struct {
	Name    string
	Blood   string // ABO type: A, B, AB or O (any case)
	Rh      string // "+" or "-"
	City    string
	Phone   string
	Amount  float64 // optional initial pledge; non-positive values default to 0
	Address string
}

// RegisterResult is returned after a registration attempt.
type RegisterResult struct {
	Phone string
	Token string // signed identity token for session continuity
	// Created is false when the phone number was already registered and the
	// submission was treated as an idempotent lookup.
	Created bool
}

// RegistrationService creates or resolves donor records.
type RegistrationService interface {
	// Register inserts a new donor for an unseen phone number, or resolves
	// the existing record untouched. Either way an identity token for the
	// phone is returned.
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
}

// DonorProfile is the donor's own view: name, running total, and when they
// last donated (nil when they never have).
type DonorProfile struct {
	Name        string
	Amount      float64
	LastDonated *time.Time
}

// DonationService accumulates donation amounts onto existing donors.
type DonationService interface {
	// Donate adds a positive amount to the donor's total atomically.
	// Returns domain.ErrInvalidAmount for non-positive or NaN amounts and
	// domain.ErrDonorNotFound when the phone resolves to no record.
	Donate(ctx context.Context, phone string, amount float64) error

	// Profile returns the donor's own view.
	Profile(ctx context.Context, phone string) (*DonorProfile, error)
}

// SearchInput carries the raw compatibility query parameters.
type SearchInput struct {
	BloodType string // optional ABO restriction; empty matches any type
	RhFactor  string // optional sign; matched as a literal, empty matches both
	City      string // optional substring; empty matches every city
	Page      int    // 1-based; values < 1 default to 1
	// Identified records whether the caller presented a valid identity
	// token. It is threaded through to the result untouched.
	Identified bool
}

// DonorSummary is the lightweight donor view used in search results.
type DonorSummary struct {
	Name       string
	BloodGroup string
	City       string
	Phone      string
	Amount     float64
}

// SearchResult is one page of compatible donors.
type SearchResult struct {
	Donors     []DonorSummary
	Page       int
	Identified bool
}

// SearchService compiles and runs compatibility queries over the registry.
type SearchService interface {
	Search(ctx context.Context, in SearchInput) (*SearchResult, error)
}

// SessionService issues and verifies the signed identity tokens handed to
// clients after registration.
type SessionService interface {
	// Issue mints a token whose subject is the donor's phone number.
	Issue(phone string) (string, error)
	// Verify checks signature and expiry and returns the embedded phone.
	// Returns domain.ErrInvalidToken for anything it cannot trust.
	Verify(token string) (string, error)
}
