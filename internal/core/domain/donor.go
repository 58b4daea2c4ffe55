package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ABO blood types recognised by the registry.
const (
	ABOTypeA  = "A"
	ABOTypeB  = "B"
	ABOTypeAB = "AB"
	ABOTypeO  = "O"
)

// Rh factor signs.
const (
	RhPositive = "+"
	RhNegative = "-"
)

var ErrDonorNotFound = errors.New("donor not found")
var ErrDonorExists = errors.New("donor already registered")
var ErrInvalidBloodGroup = errors.New("invalid blood group")
var ErrInvalidAmount = errors.New("donation amount must be a positive number")
var ErrInvalidToken = errors.New("invalid identity token")

// bloodGroupPattern is the canonical shape of a stored blood group: ABO type
// followed by the Rh sign, e.g. "AB+" or "O-".
var bloodGroupPattern = regexp.MustCompile(`^(A|B|AB|O)[+-]$`)

// NewBloodGroup combines an ABO type and an Rh sign into the stored uppercase
// form. The inputs are validated so that only well-formed groups ever reach
// the store.
func NewBloodGroup(abo, rh string) (string, error) {
	group := strings.ToUpper(strings.TrimSpace(abo)) + strings.TrimSpace(rh)
	if !bloodGroupPattern.MatchString(group) {
		return "", fmt.Errorf("%w: %q", ErrInvalidBloodGroup, group)
	}
	return group, nil
}

// Donor is the sole aggregate of the registry, keyed by phone number.
// Amount only ever grows; UpdatedAt is bumped on every accumulation while
// CreatedAt is fixed at insert.
type Donor struct {
	Phone      string    `json:"phone" bson:"phone"`
	Name       string    `json:"name" bson:"name"`
	BloodGroup string    `json:"blood_group" bson:"blood_group"`
	City       string    `json:"city" bson:"city"`
	Address    string    `json:"address,omitempty" bson:"address,omitempty"`
	Amount     float64   `json:"amount" bson:"amount"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// HasDonated reports whether the donor has accumulated anything since
// registration. Equal timestamps mean "never donated".
func (d *Donor) HasDonated() bool {
	return d.UpdatedAt.After(d.CreatedAt)
}
