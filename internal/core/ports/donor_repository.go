package ports

import (
	"context"
	"time"

	"github.com/lifeflow/blood-bank/internal/core/domain"
)

// SearchPageSize is the fixed number of donors returned per result page.
const SearchPageSize = 18

// SearchFilter is the compiled, store-ready form of a compatibility query.
// Both patterns are matched case-insensitively; user-supplied fragments have
// already been escaped by the search service, so the patterns cannot alter
// query semantics.
type SearchFilter struct {
	BloodGroupPattern string // e.g. "(A|B|O|AB)\+" or "A[+-]"
	CityPattern       string // escaped substring; empty matches every city
	Page              int    // 1-based, already clamped to >= 1
}

// DonorRepository defines persistence operations for donor records.
type DonorRepository interface {
	// Insert adds a new donor. Returns domain.ErrDonorExists when the phone
	// number is already registered (unique index violation).
	Insert(ctx context.Context, d *domain.Donor) error

	// FindByPhone retrieves a donor by phone number.
	// Returns domain.ErrDonorNotFound when no record matches.
	FindByPhone(ctx context.Context, phone string) (*domain.Donor, error)

	// AddAmount accumulates amount onto the donor's total and bumps the
	// updated timestamp as a single atomic store operation. Concurrent calls
	// for the same donor must never lose an update.
	// Returns domain.ErrDonorNotFound when the phone matches no record.
	AddAmount(ctx context.Context, phone string, amount float64, at time.Time) error

	// Search returns one page of donors matching the filter, sorted by
	// amount descending with phone ascending as the tie-break.
	Search(ctx context.Context, filter SearchFilter) ([]*domain.Donor, error)
}
