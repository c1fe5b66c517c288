package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/otpauth/internal/common"
	"github.com/dmitrijs2005/otpauth/internal/netx"
)

type Client interface {
	Ping(ctx context.Context) error
	SignIn(ctx context.Context, email string) error
	Confirm(ctx context.Context, email string, code int) (string, error)
	Check(ctx context.Context, token string) error
}

type statusResponse struct {
	Status string `json:"Status"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// HTTPClient implements Client against the otpauth REST endpoints.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient builds a client for baseURL. A missing scheme defaults to http.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, header http.Header, in any) (*netx.Response, error) {
	resp, err := netx.DoJSON(ctx, c.httpClient, method, c.baseURL+path, header, in)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return resp, nil
}

// mapStatus converts non-200 answers to sentinel errors.
func mapStatus(resp *netx.Response) error {
	var sr statusResponse
	_ = resp.Decode(&sr)

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		if sr.Status == "Invalid Email" {
			return ErrInvalidEmail
		}
		return ErrBadRequest
	case http.StatusUnauthorized:
		if sr.Status == "Invalid Code" {
			return ErrInvalidCode
		}
		return ErrUnauthorized
	case http.StatusBadGateway:
		return ErrDeliveryFailed
	case http.StatusServiceUnavailable:
		return ErrUnavailable
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, resp.Snippet(256))
	}
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/", nil, nil)
	if err != nil {
		return err
	}
	return mapStatus(resp)
}

func (c *HTTPClient) SignIn(ctx context.Context, email string) error {
	resp, err := c.do(ctx, http.MethodPost, "/signin", nil, map[string]string{"email_id": email})
	if err != nil {
		return err
	}
	return mapStatus(resp)
}

func (c *HTTPClient) Confirm(ctx context.Context, email string, code int) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/confirm", nil, map[string]any{"email_id": email, "otp": code})
	if err != nil {
		return "", err
	}
	if err := mapStatus(resp); err != nil {
		return "", err
	}

	var tr tokenResponse
	if err := resp.Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if tr.Token == "" {
		return "", errors.New("empty token in response")
	}
	return tr.Token, nil
}

func (c *HTTPClient) Check(ctx context.Context, token string) error {
	h := http.Header{}
	h.Set(common.TokenHeaderName, token)

	resp, err := c.do(ctx, http.MethodGet, "/check", h, nil)
	if err != nil {
		return err
	}
	return mapStatus(resp)
}
