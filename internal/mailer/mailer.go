package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/berlinbruno/podpirate/internal/config"
	"github.com/berlinbruno/podpirate/internal/logging"
	"github.com/berlinbruno/podpirate/pkg/models"
)

// Sender delivers a single composed message. Implementations must be safe
// for concurrent use.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPSender delivers mail over plain SMTP with AUTH.
type SMTPSender struct {
	cfg config.MailConfig
}

// NewSMTPSender creates an SMTP-backed sender.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers a single HTML message.
func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.cfg.SenderName, s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// Dispatcher composes and delivers queued mail jobs with bounded retry.
// Delivery failures never propagate back to the mutation that enqueued
// the job; after the final attempt the job is logged and dropped.
type Dispatcher struct {
	sender      Sender
	cfg         config.MailConfig
	logger      *logging.Logger
	maxAttempts int
	backoff     time.Duration
}

// NewDispatcher creates a mail dispatcher.
func NewDispatcher(sender Sender, cfg config.MailConfig, logger *logging.Logger) *Dispatcher {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Dispatcher{
		sender:      sender,
		cfg:         cfg,
		logger:      logger,
		maxAttempts: maxAttempts,
		backoff:     cfg.RetryBackoff,
	}
}

// Dispatch composes the message for a job and delivers it, retrying with a
// fixed backoff between attempts.
func (d *Dispatcher) Dispatch(job *models.MailJob) error {
	subject, body, err := d.compose(job)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		lastErr = d.sender.Send(job.To, subject, body)
		d.logger.LogMailDispatch(job.To, string(job.Kind), attempt, lastErr)
		if lastErr == nil {
			return nil
		}
		if attempt < d.maxAttempts {
			time.Sleep(d.backoff)
		}
	}

	return fmt.Errorf("mail delivery exhausted after %d attempts: %w", d.maxAttempts, lastErr)
}

func (d *Dispatcher) compose(job *models.MailJob) (subject, body string, err error) {
	switch job.Kind {
	case models.MailKindVerification:
		link := d.cfg.FrontendBase + d.cfg.VerifyPath + job.Token
		return "Verify your email", verificationBody(job.Username, link), nil
	case models.MailKindPasswordReset:
		link := d.cfg.FrontendBase + d.cfg.ResetPath + job.Token
		return "Reset your password", passwordResetBody(job.Username, link), nil
	case models.MailKindDeletion:
		return "Your account has been deleted", deletionBody(job.Username), nil
	default:
		return "", "", fmt.Errorf("unknown mail kind: %s", job.Kind)
	}
}
