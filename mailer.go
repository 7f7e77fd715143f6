package accounts

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/url"

	"github.com/dajohi/goemail"
	"github.com/goliatone/go-errors"
)

const (
	confirmationEmailSubject = "Confirm Your Account"
	passwordResetSubject     = "Reset Your Password"
)

var confirmationEmailBody = `Welcome!

Please confirm your account by following the link below:

%s

This link will expire in 1 hour.
`

var passwordResetBody = `A password reset was requested for your account.

Follow the link below to choose a new password:

%s

This link will expire in 1 hour. If you did not request a reset you can
ignore this email.
`

// ConfirmationLink builds the frontend confirmation URL for a purpose token
func ConfirmationLink(frontendURL, token string) string {
	return fmt.Sprintf("%s/confirm?token=%s", frontendURL, url.QueryEscape(token))
}

// PasswordResetLink builds the frontend reset URL for a purpose token
func PasswordResetLink(frontendURL, token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", frontendURL, url.QueryEscape(token))
}

// SMTPMailer sends lifecycle notifications from a preset address. When the
// SMTP credentials are missing the mailer runs disabled and every send is a
// logged no-op, which keeps local setups working without a mail server.
type SMTPMailer struct {
	smtp        *goemail.SMTP
	mailName    string
	mailAddress string
	disabled    bool
	logger      Logger
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a Mailer over an smtps connection
func NewSMTPMailer(host, user, password, emailAddress string, skipVerify bool) (*SMTPMailer, error) {
	if host == "" || user == "" || password == "" {
		return &SMTPMailer{
			disabled: true,
			logger:   defLogger{},
		}, nil
	}

	h := fmt.Sprintf("smtps://%v:%v@%v", user, password, host)
	u, err := url.Parse(h)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid mail host")
	}

	a, err := mail.ParseAddress(emailAddress)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid mail address")
	}

	smtp, err := goemail.NewSMTP(u.String(), &tls.Config{
		InsecureSkipVerify: skipVerify,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to dial smtp server")
	}

	return &SMTPMailer{
		smtp:        smtp,
		mailName:    a.Name,
		mailAddress: a.Address,
		logger:      defLogger{},
	}, nil
}

// WithLogger overrides the mailer logger
func (m *SMTPMailer) WithLogger(logger Logger) *SMTPMailer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// IsEnabled returns whether outbound mail is configured
func (m *SMTPMailer) IsEnabled() bool {
	return !m.disabled
}

func (m *SMTPMailer) SendConfirmationEmail(ctx context.Context, to, link string) error {
	body := fmt.Sprintf(confirmationEmailBody, link)
	return m.send(ctx, to, confirmationEmailSubject, body)
}

func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, to, link string) error {
	body := fmt.Sprintf(passwordResetBody, link)
	return m.send(ctx, to, passwordResetSubject, body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	if m.disabled {
		m.logger.Info("mail disabled, skipping send to %s: %s", to, subject)
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := goemail.NewMessage(m.mailAddress, subject, body)
	msg.SetName(m.mailName)
	msg.AddBCC(to)

	if err := m.smtp.Send(msg); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to send email")
	}

	return nil
}

// noopMailer discards every send; handlers fall back to it when constructed
// without a Mailer.
type noopMailer struct{}

func (noopMailer) SendConfirmationEmail(context.Context, string, string) error { return nil }

func (noopMailer) SendPasswordResetEmail(context.Context, string, string) error { return nil }

func normalizeMailer(m Mailer) Mailer {
	if m == nil {
		return noopMailer{}
	}
	return m
}
