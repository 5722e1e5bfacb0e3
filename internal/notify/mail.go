package notify

import (
	"context"
	"fmt"
	"html"
	"regexp"

	"gopkg.in/gomail.v2"
)

// MailSender is the part of *gomail.Dialer used for delivery.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mail e-mails notifications to a fixed staff address. The chat id is only
// mentioned in the subject.
type Mail struct {
	Dialer  MailSender
	From    string
	To      string
	Subject string
}

// NewMail returns a notifier that sends through an SMTP server.
func NewMail(host string, port int, user, password, from, to string) *Mail {
	return &Mail{
		Dialer:  gomail.NewDialer(host, port, user, password),
		From:    from,
		To:      to,
		Subject: "Lawdesk notification",
	}
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

// Notify implements Notifier. Bot HTML markup is stripped for the plain-text
// part and kept for the HTML alternative.
func (m *Mail) Notify(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", fmt.Sprintf("%s (chat %d)", m.Subject, chatID))
	msg.SetBody("text/plain", html.UnescapeString(tagRe.ReplaceAllString(text, "")))
	msg.AddAlternative("text/html", "<pre style=\"font-family:inherit;white-space:pre-wrap\">"+text+"</pre>")
	err := m.Dialer.DialAndSend(msg)
	observe("mail", err)
	return err
}
