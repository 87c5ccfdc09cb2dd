package mail

import (
	"context"

	"github.com/AlagappanMk24/Gymunity/modules/shared/api"
)

const bulkLimit = 8

// TemplateMailer renders templates and hands the messages to a Sender.
type TemplateMailer struct {
	sender    Sender
	templates *Templates
}

func NewTemplateMailer(sender Sender, templates *Templates) *TemplateMailer {
	return &TemplateMailer{sender: sender, templates: templates}
}

func (m *TemplateMailer) Mail(ctx context.Context, to api.UserContact, subject, template string, data any) error {
	return m.MailAll(ctx, []api.UserContact{to}, subject, template, data)
}

// MailAll sends the same rendered body to each contact separately. Contacts
// without an address are skipped.
func (m *TemplateMailer) MailAll(ctx context.Context, to []api.UserContact, subject, template string, data any) error {
	html, err := m.templates.Render(template, data)
	if err != nil {
		return err
	}
	msgs := make([]Message, 0, len(to))
	for _, c := range to {
		if c.Email == "" {
			continue
		}
		msgs = append(msgs, To(c.FullName, c.Email, subject, html))
	}
	switch len(msgs) {
	case 0:
		return nil
	case 1:
		return m.sender.Send(ctx, msgs[0])
	default:
		return SendBulk(ctx, m.sender, msgs, bulkLimit)
	}
}
