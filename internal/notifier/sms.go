package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"github.com/pfrederiksen/ski-report/internal/caption"
)

// TextSender delivers one plain text message to one recipient address
type TextSender interface {
	SendText(ctx context.Context, recipient, body string) error
}

// SMSNotifier texts the caption to every recipient. The image is not sent.
type SMSNotifier struct {
	sender     TextSender
	recipients []string
}

// NewSMSNotifier creates an SMS channel
func NewSMSNotifier(sender TextSender, recipients []string) (*SMSNotifier, error) {
	var cleaned []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	if sender == nil || len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: sms sender and at least one recipient are required", ErrNotConfigured)
	}
	return &SMSNotifier{sender: sender, recipients: cleaned}, nil
}

// Name implements Channel.
func (n *SMSNotifier) Name() string { return ChannelSMS }

// Variant implements Channel. Text messages only carry the first few hours.
func (n *SMSNotifier) Variant() caption.Variant {
	return caption.Variant{MaxPoints: caption.SMSMaxPoints}
}

// Send texts every recipient; one failed recipient does not stop the others.
func (n *SMSNotifier) Send(ctx context.Context, _ []byte, text string) error {
	var errs []error
	for _, r := range n.recipients {
		if err := n.sender.SendText(ctx, r, text); err != nil {
			errs = append(errs, fmt.Errorf("recipient %s: %w", maskRecipient(r), err))
		}
	}
	return errors.Join(errs...)
}

// maskRecipient hides all but the last four characters of the local part
func maskRecipient(r string) string {
	local, domain, found := strings.Cut(r, "@")
	if len(local) > 4 {
		local = strings.Repeat("*", len(local)-4) + local[len(local)-4:]
	}
	if found {
		return local + "@" + domain
	}
	return local
}

// EmailGateway sends texts through carrier e-mail-to-SMS gateways (for
// example 3035550123@vtext.com) over SMTP.
type EmailGateway struct {
	addr string
	host string
	auth smtp.Auth
	from string
}

// NewEmailGateway creates a gateway for an SMTP server. Empty credentials
// send without authentication.
func NewEmailGateway(host string, port int, username, password, from string) (*EmailGateway, error) {
	if host == "" || from == "" {
		return nil, fmt.Errorf("%w: smtp host and from address are required", ErrNotConfigured)
	}
	if port <= 0 {
		port = 587
	}

	g := &EmailGateway{
		addr: fmt.Sprintf("%s:%d", host, port),
		host: host,
		from: from,
	}
	if username != "" {
		g.auth = smtp.PlainAuth("", username, password, host)
	}
	return g, nil
}

// SendText implements TextSender. ctx is checked before the SMTP exchange
// starts; net/smtp cannot be interrupted once it runs, so the dispatcher's
// per-send timeout bounds the caller, not this call.
func (g *EmailGateway) SendText(ctx context.Context, recipient, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mail := email.NewEmail()
	mail.From = g.from
	mail.To = []string{recipient}
	mail.Text = []byte(body)

	err := mail.Send(g.addr, g.auth)
	if err != nil && g.auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(g.addr, nil)
	}
	if err != nil {
		return fmt.Errorf("sending mail via %s: %w", g.host, err)
	}
	return nil
}
