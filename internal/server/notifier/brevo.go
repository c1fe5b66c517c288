package notifier

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/otpauth/internal/netx"
)

const BrevoAPIURL = "https://api.brevo.com/v3/smtp/email"

// BrevoConfig configures the Brevo transactional email notifier.
type BrevoConfig struct {
	APIKey     string
	TemplateID int64
	FromEmail  string
	FromName   string
	// APIURL overrides BrevoAPIURL, used by tests.
	APIURL string
}

// Brevo sends codes through the Brevo (formerly Sendinblue) API. With a
// template id the code is passed as params.code; otherwise the message is
// rendered locally and sent as htmlContent.
type Brevo struct {
	cfg        BrevoConfig
	tpl        *Templates
	httpClient *http.Client
}

func NewBrevo(cfg BrevoConfig, tpl *Templates) *Brevo {
	if cfg.APIURL == "" {
		cfg.APIURL = BrevoAPIURL
	}
	return &Brevo{
		cfg:        cfg,
		tpl:        tpl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoRequest struct {
	Sender      *brevoContact  `json:"sender,omitempty"`
	To          []brevoContact `json:"to"`
	TemplateID  int64          `json:"templateId,omitempty"`
	Params      map[string]any `json:"params,omitempty"`
	Subject     string         `json:"subject,omitempty"`
	HtmlContent string         `json:"htmlContent,omitempty"`
}

func (b *Brevo) request(msg Message) (*brevoRequest, error) {
	req := &brevoRequest{To: []brevoContact{{Email: msg.To}}}
	if b.cfg.FromEmail != "" {
		req.Sender = &brevoContact{Email: b.cfg.FromEmail, Name: b.cfg.FromName}
	}

	if b.cfg.TemplateID > 0 {
		req.TemplateID = b.cfg.TemplateID
		req.Params = map[string]any{
			"code":          msg.Code,
			"valid_minutes": int(msg.ValidFor.Minutes()),
		}
		return req, nil
	}

	subject, body, err := b.tpl.Render(msg)
	if err != nil {
		return nil, err
	}
	req.Subject = subject
	req.HtmlContent = "<p>" + strings.ReplaceAll(html.EscapeString(body), "\n", "<br>") + "</p>"
	return req, nil
}

func (b *Brevo) Send(ctx context.Context, msg Message) error {
	reqBody, err := b.request(msg)
	if err != nil {
		return err
	}

	h := http.Header{}
	h.Set("api-key", b.cfg.APIKey)

	resp, err := netx.DoJSON(ctx, b.httpClient, http.MethodPost, b.cfg.APIURL, h, reqBody)
	if err != nil {
		return fmt.Errorf("brevo send email request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("brevo API error: status %d, body: %s", resp.StatusCode, resp.Snippet(4096))
	}

	return nil
}
