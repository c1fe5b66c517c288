package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/otpauth/internal/common"
	"github.com/dmitrijs2005/otpauth/internal/logging"
	"github.com/dmitrijs2005/otpauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	requestErr error
	confirmErr error
	token      string
	checkErr   error
	status     services.LoginStatus

	gotEmail string
	gotCode  int
	gotToken string
	calls    int
}

func (f *fakeAuthService) RequestCode(ctx context.Context, email string) error {
	f.calls++
	f.gotEmail = email
	return f.requestErr
}

func (f *fakeAuthService) ConfirmCode(ctx context.Context, email string, code int) (string, error) {
	f.calls++
	f.gotEmail, f.gotCode = email, code
	return f.token, f.confirmErr
}

func (f *fakeAuthService) CheckToken(ctx context.Context, token string) (services.LoginStatus, error) {
	f.calls++
	f.gotToken = token
	return f.status, f.checkErr
}

func do(t *testing.T, svc AuthService, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	srv := NewServer(":0", svc, nil, logging.NewNopLogger())

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	rec := do(t, &fakeAuthService{}, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Token based passwordless authentication"}`, rec.Body.String())
}

func TestSignin(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantCode   int
		wantStatus string
		wantCalls  int
	}{
		{name: "ok", body: `{"email_id":"a@b.com"}`, wantCode: http.StatusOK, wantStatus: StatusOK, wantCalls: 1},
		{name: "invalid email", body: `{"email_id":"bad-email"}`, svcErr: common.ErrInvalidEmail, wantCode: http.StatusBadRequest, wantStatus: StatusInvalidEmail, wantCalls: 1},
		{name: "missing email", body: `{}`, wantCode: http.StatusBadRequest, wantStatus: StatusInvalidEmail},
		{name: "delivery failed", body: `{"email_id":"a@b.com"}`, svcErr: fmt.Errorf("%w: smtp down", common.ErrDeliveryFailed), wantCode: http.StatusBadGateway, wantStatus: StatusDeliveryFailed, wantCalls: 1},
		{name: "store unavailable", body: `{"email_id":"a@b.com"}`, svcErr: fmt.Errorf("%w: db", common.ErrStoreUnavailable), wantCode: http.StatusServiceUnavailable, wantStatus: StatusServiceUnavailable, wantCalls: 1},
		{name: "unexpected error", body: `{"email_id":"a@b.com"}`, svcErr: errors.New("boom"), wantCode: http.StatusInternalServerError, wantStatus: StatusInternalError, wantCalls: 1},
		{name: "malformed json", body: `{"email_id":`, wantCode: http.StatusBadRequest, wantStatus: StatusInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{requestErr: tt.svcErr}
			rec := do(t, svc, http.MethodPost, "/signin", tt.body, nil)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"Status":%q}`, tt.wantStatus), rec.Body.String())
			assert.Equal(t, tt.wantCalls, svc.calls)
		})
	}
}

func TestSignin_PassesEmailThrough(t *testing.T) {
	svc := &fakeAuthService{}
	rec := do(t, svc, http.MethodPost, "/signin", `{"email_id":" A@B.com "}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, " A@B.com ", svc.gotEmail)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		svc      *fakeAuthService
		wantCode int
		wantBody string
	}{
		{
			name:     "ok",
			body:     `{"email_id":"a@b.com","otp":123456}`,
			svc:      &fakeAuthService{token: "abc123"},
			wantCode: http.StatusOK,
			wantBody: `{"token":"abc123"}`,
		},
		{
			name:     "invalid code",
			body:     `{"email_id":"a@b.com","otp":111111}`,
			svc:      &fakeAuthService{confirmErr: common.ErrInvalidCode},
			wantCode: http.StatusUnauthorized,
			wantBody: `{"Status":"Invalid Code"}`,
		},
		{
			name:     "store unavailable",
			body:     `{"email_id":"a@b.com","otp":111111}`,
			svc:      &fakeAuthService{confirmErr: fmt.Errorf("%w: tx", common.ErrStoreUnavailable)},
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"Status":"Service unavailable"}`,
		},
		{
			name:     "otp as numeric string",
			body:     `{"email_id":"a@b.com","otp":" 123456 "}`,
			svc:      &fakeAuthService{token: "abc123"},
			wantCode: http.StatusOK,
			wantBody: `{"token":"abc123"}`,
		},
		{
			name:     "otp as non-numeric string",
			body:     `{"email_id":"a@b.com","otp":"12ab56"}`,
			svc:      &fakeAuthService{},
			wantCode: http.StatusBadRequest,
			wantBody: `{"Status":"Invalid request"}`,
		},
		{
			name:     "otp as object",
			body:     `{"email_id":"a@b.com","otp":{}}`,
			svc:      &fakeAuthService{},
			wantCode: http.StatusBadRequest,
			wantBody: `{"Status":"Invalid request"}`,
		},
		{
			name:     "missing otp",
			body:     `{"email_id":"a@b.com"}`,
			svc:      &fakeAuthService{},
			wantCode: http.StatusUnauthorized,
			wantBody: `{"Status":"Invalid Code"}`,
		},
		{
			name:     "zero otp",
			body:     `{"email_id":"a@b.com","otp":0}`,
			svc:      &fakeAuthService{},
			wantCode: http.StatusUnauthorized,
			wantBody: `{"Status":"Invalid Code"}`,
		},
		{
			name:     "null otp",
			body:     `{"email_id":"a@b.com","otp":null}`,
			svc:      &fakeAuthService{},
			wantCode: http.StatusUnauthorized,
			wantBody: `{"Status":"Invalid Code"}`,
		},
		{
			name:     "missing email",
			body:     `{"otp":123456}`,
			svc:      &fakeAuthService{},
			wantCode: http.StatusUnauthorized,
			wantBody: `{"Status":"Invalid Code"}`,
		},
		{
			name:     "malformed json",
			body:     `{"email_id":`,
			svc:      &fakeAuthService{},
			wantCode: http.StatusBadRequest,
			wantBody: `{"Status":"Invalid request"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, tt.svc, http.MethodPost, "/confirm", tt.body, nil)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestConfirm_PassesArguments(t *testing.T) {
	svc := &fakeAuthService{token: "t"}
	rec := do(t, svc, http.MethodPost, "/confirm", `{"email_id":"a@b.com","otp":654321}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@b.com", svc.gotEmail)
	assert.Equal(t, 654321, svc.gotCode)
}

func TestConfirm_StringOtpPassesArguments(t *testing.T) {
	svc := &fakeAuthService{token: "t"}
	rec := do(t, svc, http.MethodPost, "/confirm", `{"email_id":"a@b.com","otp":"654321"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 654321, svc.gotCode)
}

func TestConfirm_MissingFieldsSkipService(t *testing.T) {
	for _, body := range []string{`{"email_id":"a@b.com"}`, `{"otp":123456}`, `{}`} {
		svc := &fakeAuthService{}
		rec := do(t, svc, http.MethodPost, "/confirm", body, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, body)
		assert.Zero(t, svc.calls, body)
	}
}

func TestOtpCode_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    OtpCode
		wantErr bool
	}{
		{in: `123456`, want: 123456},
		{in: `"123456"`, want: 123456},
		{in: `" 042 "`, want: 42},
		{in: `null`, want: 0},
		{in: `"abc"`, wantErr: true},
		{in: `12.5`, wantErr: true},
		{in: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var o OtpCode
			err := o.UnmarshalJSON([]byte(tt.in))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, o)
		})
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		svc      *fakeAuthService
		token    string
		wantCode int
		wantBody string
	}{
		{
			name:     "valid",
			svc:      &fakeAuthService{status: services.LoginSuccessful},
			token:    "tok",
			wantCode: http.StatusOK,
			wantBody: `{"Status":"Login successful"}`,
		},
		{
			name:     "expired",
			svc:      &fakeAuthService{status: services.LoginExpired},
			token:    "tok",
			wantCode: http.StatusUnauthorized,
			wantBody: `{"Status":"Login expired"}`,
		},
		{
			name:     "missing header",
			svc:      &fakeAuthService{status: services.LoginExpired},
			wantCode: http.StatusUnauthorized,
			wantBody: `{"Status":"Login expired"}`,
		},
		{
			name:     "store unavailable",
			svc:      &fakeAuthService{checkErr: fmt.Errorf("%w: db", common.ErrStoreUnavailable)},
			token:    "tok",
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"Status":"Service unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.token != "" {
				headers[common.TokenHeaderName] = tt.token
			}
			rec := do(t, tt.svc, http.MethodGet, "/check", "", headers)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, tt.token, tt.svc.gotToken)
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	rec := do(t, &fakeAuthService{}, http.MethodOptions, "/signin", "", map[string]string{
		"Origin":                         "https://app.example.com",
		"Access-Control-Request-Method":  http.MethodPost,
		"Access-Control-Request-Headers": "content-type,token",
	})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Equal(t, "content-type,token", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	srv := NewServer(":0", &fakeAuthService{}, []string{"https://allowed.io"}, logging.NewNopLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.io")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://allowed.io")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "https://allowed.io", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_WildcardWithoutCredentials(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	NewServer(":0", &fakeAuthService{}, nil, logging.NewNopLogger()).Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRecover(t *testing.T) {
	rec := do(t, &panicService{}, http.MethodGet, "/check", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type panicService struct{ fakeAuthService }

func (panicService) CheckToken(context.Context, string) (services.LoginStatus, error) {
	panic("boom")
}
