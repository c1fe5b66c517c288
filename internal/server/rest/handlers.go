package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/otpauth/internal/common"
	"github.com/dmitrijs2005/otpauth/internal/logging"
	"github.com/dmitrijs2005/otpauth/internal/server/services"
	"github.com/labstack/echo/v4"
)

// AuthService is the part of services.AuthService the handlers call.
type AuthService interface {
	RequestCode(ctx context.Context, email string) error
	ConfirmCode(ctx context.Context, email string, code int) (string, error)
	CheckToken(ctx context.Context, token string) (services.LoginStatus, error)
}

const (
	StatusOK                 = "OK"
	StatusInvalidEmail       = "Invalid Email"
	StatusInvalidCode        = "Invalid Code"
	StatusLoginSuccessful    = "Login successful"
	StatusLoginExpired       = "Login expired"
	StatusDeliveryFailed     = "Delivery failed"
	StatusServiceUnavailable = "Service unavailable"
	StatusInvalidRequest     = "Invalid request"
	StatusInternalError      = "Internal error"
)

type SigninRequest struct {
	EmailID string `json:"email_id" validate:"required"`
}

type ConfirmRequest struct {
	EmailID string  `json:"email_id" validate:"required"`
	Otp     OtpCode `json:"otp" validate:"required"`
}

// OtpCode accepts the code as a JSON number or as a numeric string.
type OtpCode int

func (o *OtpCode) UnmarshalJSON(b []byte) error {
	raw := string(b)
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("otp must be an integer: %w", err)
	}
	*o = OtpCode(n)
	return nil
}

type StatusResponse struct {
	Status string `json:"Status"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type Handler struct {
	svc    AuthService
	logger logging.Logger
}

func NewHandler(svc AuthService, logger logging.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func status(c echo.Context, code int, s string) error {
	return c.JSON(code, StatusResponse{Status: s})
}

// fail maps service errors to responses without leaking internals.
func (h *Handler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidEmail):
		return status(c, http.StatusBadRequest, StatusInvalidEmail)
	case errors.Is(err, common.ErrInvalidCode):
		return status(c, http.StatusUnauthorized, StatusInvalidCode)
	case errors.Is(err, common.ErrDeliveryFailed):
		return status(c, http.StatusBadGateway, StatusDeliveryFailed)
	case errors.Is(err, common.ErrStoreUnavailable):
		return status(c, http.StatusServiceUnavailable, StatusServiceUnavailable)
	default:
		h.logger.Error(c.Request().Context(), "unexpected error", "path", c.Path(), "error", err)
		return status(c, http.StatusInternalServerError, StatusInternalError)
	}
}

func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Token based passwordless authentication"})
}

func (h *Handler) Signin(c echo.Context) error {
	var req SigninRequest
	if err := c.Bind(&req); err != nil {
		return status(c, http.StatusBadRequest, StatusInvalidRequest)
	}
	// an absent email is just another invalid email
	if err := c.Validate(&req); err != nil {
		return status(c, http.StatusBadRequest, StatusInvalidEmail)
	}

	if err := h.svc.RequestCode(c.Request().Context(), req.EmailID); err != nil {
		return h.fail(c, err)
	}
	return status(c, http.StatusOK, StatusOK)
}

func (h *Handler) Confirm(c echo.Context) error {
	var req ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return status(c, http.StatusBadRequest, StatusInvalidRequest)
	}
	// a missing email or code is a failed confirmation like any other
	if err := c.Validate(&req); err != nil {
		return status(c, http.StatusUnauthorized, StatusInvalidCode)
	}

	token, err := h.svc.ConfirmCode(c.Request().Context(), req.EmailID, int(req.Otp))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (h *Handler) Check(c echo.Context) error {
	token := c.Request().Header.Get(common.TokenHeaderName)

	st, err := h.svc.CheckToken(c.Request().Context(), token)
	if err != nil {
		return h.fail(c, err)
	}
	if st != services.LoginSuccessful {
		return status(c, http.StatusUnauthorized, StatusLoginExpired)
	}
	return status(c, http.StatusOK, StatusLoginSuccessful)
}
