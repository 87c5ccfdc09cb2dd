package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names.
const (
	TemplateWelcome                  = "welcome"
	TemplateSignIn                   = "signin"
	TemplateResetPassword            = "reset_password"
	TemplateSubscriptionConfirmation = "subscription_confirmation"
	TemplateNewSubscriber            = "new_subscriber"
	TemplatePaymentFailed            = "payment_failed"
	TemplateAccountSuspended         = "account_suspended"
	TemplateTrainerRegistered        = "trainer_registered"
)

// Templates renders email bodies inside the shared layout.
type Templates struct {
	byName map[string]*template.Template
}

func LoadTemplates() (*Templates, error) {
	names := []string{
		TemplateWelcome, TemplateSignIn, TemplateResetPassword, TemplateSubscriptionConfirmation,
		TemplateNewSubscriber, TemplatePaymentFailed, TemplateAccountSuspended, TemplateTrainerRegistered,
	}
	t := &Templates{byName: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		tpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.byName[name] = tpl
	}
	return t, nil
}

// Render executes the named template with data.
func (t *Templates) Render(name string, data any) (string, error) {
	tpl, ok := t.byName[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	var b bytes.Buffer
	if err := tpl.ExecuteTemplate(&b, "layout", data); err != nil {
		return "", fmt.Errorf("rendering template %s: %w", name, err)
	}
	return b.String(), nil
}
