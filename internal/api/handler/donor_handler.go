package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lifeflow/blood-bank/internal/api/middleware"
	"github.com/lifeflow/blood-bank/internal/core/domain"
	"github.com/lifeflow/blood-bank/internal/core/ports"
)

// DonorHandler handles the registry's HTTP surface: registration, donations,
// the donor self view, and the compatibility search.
type DonorHandler struct {
	registration ports.RegistrationService
	donations    ports.DonationService
	search       ports.SearchService
}

func NewDonorHandler(registration ports.RegistrationService, donations ports.DonationService, search ports.SearchService) *DonorHandler {
	return &DonorHandler{registration: registration, donations: donations, search: search}
}

// Register handles POST /register — creates or resolves a donor and hands the
// client its identity cookie.
//
// @Summary      Register a donor (idempotent on phone)
// @Tags         donors
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Param        body  body      registerRequest  true  "Candidate donor profile"
// @Success      303
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /register [post]
func (h *DonorHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.registration.Register(c.Request().Context(), ports.RegisterInput{
		Name:    req.Name,
		Blood:   req.Blood,
		Rh:      req.Rh,
		City:    req.City,
		Phone:   req.Phone,
		Amount:  parseAmount(req.Amount),
		Address: req.Address,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidBloodGroup) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error()+". Please go back and try again.")
		}
		return err
	}

	setSessionCookie(c, result.Token)
	return c.Redirect(http.StatusSeeOther, "/donate")
}

// Donate handles POST /donate — accumulates a positive amount onto the
// authenticated donor. Invalid amounts redirect back to the form; a token
// that resolves to no donor is a broken identity and routes through logout.
//
// @Summary      Record a donation amount
// @Tags         donors
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Param        body  body      donateRequest  true  "Donation amount"
// @Success      303
// @Failure      500   {object}  errorResponse
// @Router       /donate [post]
func (h *DonorHandler) Donate(c echo.Context) error {
	phone, err := ctxPhone(c)
	if err != nil {
		return err
	}

	var req donateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	amount, perr := strconv.ParseFloat(strings.TrimSpace(req.Amount), 64)
	if perr != nil {
		amount = math.NaN() // the ledger rejects it as invalid input
	}

	if err := h.donations.Donate(c.Request().Context(), phone, amount); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			return c.Redirect(http.StatusSeeOther, backTarget(c))
		case errors.Is(err, domain.ErrDonorNotFound):
			return c.Redirect(http.StatusSeeOther, "/logout")
		}
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/donate")
}

// Profile handles GET /donate — the donor's own name, accumulated amount,
// and last-donated time.
//
// @Summary      Donor self view
// @Tags         donors
// @Produce      json
// @Success      200  {object}  donorProfileResponse
// @Failure      500  {object}  errorResponse
// @Router       /donate [get]
func (h *DonorHandler) Profile(c echo.Context) error {
	phone, err := ctxPhone(c)
	if err != nil {
		return err
	}

	profile, err := h.donations.Profile(c.Request().Context(), phone)
	if err != nil {
		if errors.Is(err, domain.ErrDonorNotFound) {
			return c.Redirect(http.StatusSeeOther, "/logout")
		}
		return err
	}

	resp := donorProfileResponse{
		Name:        profile.Name,
		Amount:      profile.Amount,
		LastDonated: "Never.",
	}
	if profile.LastDonated != nil {
		resp.LastDonated = profile.LastDonated.UTC().Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, resp)
}

// Bank handles GET /bank — one page of compatible donors ranked by amount.
//
// @Summary      Search compatible donors
// @Tags         donors
// @Produce      json
// @Param        blood  query  string  false  "ABO type (A, B, AB, O); absent matches any"
// @Param        rh     query  string  false  "Rh sign, matched literally; absent matches both"
// @Param        city   query  string  false  "City substring, case-insensitive"
// @Param        page   query  int     false  "1-based page, 18 donors per page"
// @Success      200  {object}  bankResponse
// @Failure      500  {object}  errorResponse
// @Router       /bank [get]
func (h *DonorHandler) Bank(c echo.Context) error {
	phone, _ := c.Get("phone").(string)

	// Non-numeric pages parse to 0 and default to page 1 downstream.
	page, _ := strconv.Atoi(c.QueryParam("page"))

	result, err := h.search.Search(c.Request().Context(), ports.SearchInput{
		BloodType:  c.QueryParam("blood"),
		RhFactor:   c.QueryParam("rh"),
		City:       c.QueryParam("city"),
		Page:       page,
		Identified: phone != "",
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toBankResponse(result))
}

// Logout handles GET /logout — clears the identity cookie.
//
// @Summary      Clear the identity cookie
// @Tags         donors
// @Success      303
// @Router       /logout [get]
func (h *DonorHandler) Logout(c echo.Context) error {
	clearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, "/")
}

// Index handles GET / — a minimal service banner for the landing route the
// logout flow redirects to.
func (h *DonorHandler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"service": "blood bank donor registry"})
}

// parseAmount interprets the optional registration amount field: absent or
// unparseable values default to 0 and the service clamps negatives.
func parseAmount(raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

// backTarget resolves where "redirect back" lands: the referring form when
// known, the donation view otherwise.
func backTarget(c echo.Context) string {
	if ref := c.Request().Referer(); ref != "" {
		return ref
	}
	return "/donate"
}

func setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ports.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
