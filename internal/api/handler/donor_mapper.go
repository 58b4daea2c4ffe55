package handler

import (
	"github.com/lifeflow/blood-bank/internal/core/ports"
)

// --- Service result → HTTP response ---

func toBankResponse(r *ports.SearchResult) bankResponse {
	donors := make([]donorSummaryResponse, len(r.Donors))
	for i, d := range r.Donors {
		donors[i] = donorSummaryResponse{
			Name:       d.Name,
			BloodGroup: d.BloodGroup,
			City:       d.City,
			Phone:      d.Phone,
			Amount:     d.Amount,
		}
	}
	return bankResponse{
		Donors:     donors,
		Page:       r.Page,
		Identified: r.Identified,
	}
}
