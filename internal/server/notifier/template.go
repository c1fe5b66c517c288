package notifier

import (
	"bytes"
	"fmt"
	"text/template"
)

const (
	DefaultSubjectTemplate = `Your {{.SiteName}} sign-in code`
	DefaultBodyTemplate    = `Hello,

Your {{.SiteName}} sign-in code is {{.Code}}.
It is valid for {{.ValidMinutes}} minutes. If you did not request it, ignore this email.
`
)

// EmailParams are the values available to the subject and body templates.
type EmailParams struct {
	SiteName     string
	Email        string
	Code         int
	ValidMinutes int
}

// Templates renders the subject and body of a code email.
type Templates struct {
	SiteName string
	subject  *template.Template
	body     *template.Template
}

// NewTemplates parses the given templates. Empty strings select the defaults.
func NewTemplates(siteName, subject, body string) (*Templates, error) {
	if subject == "" {
		subject = DefaultSubjectTemplate
	}
	if body == "" {
		body = DefaultBodyTemplate
	}

	st, err := template.New("subject").Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("parse subject template: %w", err)
	}
	bt, err := template.New("body").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse body template: %w", err)
	}

	return &Templates{SiteName: siteName, subject: st, body: bt}, nil
}

func (t *Templates) params(msg Message) EmailParams {
	return EmailParams{
		SiteName:     t.SiteName,
		Email:        msg.To,
		Code:         msg.Code,
		ValidMinutes: int(msg.ValidFor.Minutes()),
	}
}

// Render returns the subject and body for msg.
func (t *Templates) Render(msg Message) (string, string, error) {
	p := t.params(msg)

	var subject, body bytes.Buffer
	if err := t.subject.Execute(&subject, p); err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	if err := t.body.Execute(&body, p); err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return subject.String(), body.String(), nil
}
