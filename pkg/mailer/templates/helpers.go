package templates

import (
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithPreferences(p []string) Option {
	return func(d *EmailData) { d.Preferences = p }
}

func WithBranding(appName, companyName, appURL, supportURL string) Option {
	return func(d *EmailData) {
		d.AppName = appName
		d.CompanyName = companyName
		d.AppURL = appURL
		d.SupportURL = supportURL
	}
}

func newData(typ, name, email string, opts ...Option) map[string]any {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,
	}
	for _, o := range opts {
		o(&d)
	}
	return ToMap(d)
}

// NewWelcomeData builds template data for the registration welcome mail.
func NewWelcomeData(name, email string, opts ...Option) map[string]any {
	return newData(Welcome, name, email, opts...)
}

// NewPasswordChangedData builds template data for the password change notice.
func NewPasswordChangedData(name, email string, opts ...Option) map[string]any {
	return newData(PasswordChanged, name, email, opts...)
}
