package helpers

import (
	"fmt"
	"strings"
	"time"

	"github.com/oksasatya/go-article-feed/pkg/mailer"
	mailtpl "github.com/oksasatya/go-article-feed/pkg/mailer/templates"
)

// Branding is the static sender information folded into every templated mail.
type Branding struct {
	AppName     string
	CompanyName string
	AppURL      string
	SupportURL  string
}

// EmailJobForEvent maps a domain event to the email it should trigger.
// ok is false for events that do not send mail.
func EmailJobForEvent(eventType string, data map[string]any, b Branding) (job mailer.EmailJob, ok bool) {
	to := stringField(data, "email")
	if to == "" {
		return mailer.EmailJob{}, false
	}
	name := stringField(data, "name")
	opts := []mailtpl.Option{
		mailtpl.WithBranding(b.AppName, b.CompanyName, b.AppURL, b.SupportURL),
		mailtpl.WithTime(time.Now()),
	}

	switch strings.ToLower(eventType) {
	case "user.registered":
		opts = append(opts, mailtpl.WithPreferences(stringSlice(data["preferences"])))
		return mailer.EmailJob{To: to, Template: mailtpl.Welcome, Data: mailtpl.NewWelcomeData(name, to, opts...)}, true
	case "user.password_changed":
		return mailer.EmailJob{To: to, Template: mailtpl.PasswordChanged, Data: mailtpl.NewPasswordChangedData(name, to, opts...)}, true
	default:
		return mailer.EmailJob{}, false
	}
}

// RenderJob fills Subject/Text/HTML from the job template when one is set.
func RenderJob(job *mailer.EmailJob) error {
	if job.Template == "" {
		return nil
	}
	s, t, h, err := mailtpl.Render(job.Template, job.Data)
	if err != nil {
		return err
	}
	job.Subject, job.Text, job.HTML = s, t, h
	return nil
}

func stringField(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

func stringSlice(v any) []string {
	switch x := v.(type) {
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	}
	return nil
}
