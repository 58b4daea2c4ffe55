package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

// registerRequest accepts both form and JSON submissions. Amount is carried
// as a string because it arrives from an optional free-text form field; the
// handler parses it and defaults to 0.
type registerRequest struct {
	Name    string `json:"name"    form:"name"    validate:"required"`
	Blood   string `json:"blood"   form:"blood"   validate:"required"`
	Rh      string `json:"rh"      form:"rh"      validate:"required,oneof=+ -"`
	City    string `json:"city"    form:"city"    validate:"required"`
	Phone   string `json:"phone"   form:"phone"   validate:"required"`
	Amount  string `json:"amount,omitempty"  form:"amount"`
	Address string `json:"address,omitempty" form:"address"`
}

// donateRequest carries the submitted donation amount. Kept as a string so a
// non-numeric submission is rejected by the ledger rather than by binding.
type donateRequest struct {
	Amount string `json:"amount" form:"amount"`
}

// --- Response types ---

// donorProfileResponse is the donor's own view rendered by GET /donate.
// LastDonated is "Never." until the first accepted donation.
type donorProfileResponse struct {
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	LastDonated string  `json:"last_donated"`
}

// donorSummaryResponse is a single donor row in a search result page.
type donorSummaryResponse struct {
	Name       string  `json:"name"`
	BloodGroup string  `json:"blood_group"`
	City       string  `json:"city"`
	Phone      string  `json:"phone"`
	Amount     float64 `json:"amount"`
}

// bankResponse is one page of compatible donors, highest contributors first.
type bankResponse struct {
	Donors     []donorSummaryResponse `json:"donors"`
	Page       int                    `json:"page"`
	Identified bool                   `json:"identified"`
}
