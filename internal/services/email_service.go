package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/sjperalta/registro-api/internal/config"
	"github.com/sjperalta/registro-api/internal/models"
	"github.com/sjperalta/registro-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

const dateLayout = "02/01/2006"

// Attachment is a file sent along with an email
type Attachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// BatchDigest is the admin summary of one lifecycle job run
type BatchDigest struct {
	Job        string
	RunAt      time.Time
	Results    []models.StatusChangeResult
	Attachment *Attachment
}

// ErrNotificationsDisabled is returned by the mailer when email delivery is
// switched off by configuration. Nothing was sent.
var ErrNotificationsDisabled = errors.New("email notifications disabled")

// Mailer delivers lifecycle notifications
type Mailer interface {
	SendStatusChange(ctx context.Context, to, subject string, result models.StatusChangeResult) error
	SendBatchDigest(ctx context.Context, to []string, subject string, digest BatchDigest) error
}

type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

// checkEmailPreconditions reports whether an email for operation should be
// sent to address. Disabled notifications are not an error.
func (s *EmailService) checkEmailPreconditions(address, operation string) (bool, error) {
	if !s.config.EnableEmailNotifications {
		logger.Debug("Email notifications disabled, skipping", "operation", operation)
		return false, nil
	}
	if s.config.ResendAPIKey == "" {
		return false, errors.New("RESEND_API_KEY is not set")
	}
	if s.config.FromEmail == "" {
		return false, errors.New("FROM_EMAIL is not set")
	}
	if strings.TrimSpace(address) == "" {
		return false, errors.New("email address is empty")
	}
	return true, nil
}

// SendStatusChange notifies a contract referent of a lifecycle transition
func (s *EmailService) SendStatusChange(ctx context.Context, to, subject string, result models.StatusChangeResult) error {
	ok, err := s.checkEmailPreconditions(to, result.OperationCode)
	if !ok {
		return skipReason(err)
	}

	body, err := s.renderStatusChange(subject, result)
	if err != nil {
		return err
	}

	return s.send(ctx, &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	})
}

// SendBatchDigest sends the run summary to the administrators
func (s *EmailService) SendBatchDigest(ctx context.Context, to []string, subject string, digest BatchDigest) error {
	if len(to) == 0 {
		return nil
	}
	ok, err := s.checkEmailPreconditions(to[0], digest.Job)
	if !ok {
		return skipReason(err)
	}

	body, err := s.renderBatchDigest(subject, digest)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      to,
		Subject: subject,
		Html:    body,
	}
	if digest.Attachment != nil {
		params.Attachments = []*resend.Attachment{{
			Filename:    digest.Attachment.Filename,
			Content:     digest.Attachment.Content,
			ContentType: digest.Attachment.ContentType,
		}}
	}
	return s.send(ctx, params)
}

// skipReason turns a negative precondition check into the error reported to
// callers: the failed precondition, or ErrNotificationsDisabled.
func skipReason(err error) error {
	if err != nil {
		return err
	}
	return ErrNotificationsDisabled
}

func (s *EmailService) send(ctx context.Context, params *resend.SendEmailRequest) error {
	_, err := s.resendClient.Emails.SendWithContext(ctx, params)
	if err != nil {
		logger.Error("Failed to send email", "to", params.To, "subject", params.Subject, "error", err)
		return fmt.Errorf("failed to send email %q: %w", params.Subject, err)
	}

	logger.Info("Email sent", "to", params.To, "subject", params.Subject)
	return nil
}

func (s *EmailService) renderStatusChange(subject string, result models.StatusChangeResult) (string, error) {
	data := struct {
		Subject         string
		ContractID      string
		ContractNumber  string
		ContractSubject string
		ExpiryDate      string
		PreviousStatus  string
		NewStatus       string
		SuccessorExpiry string
		ChangedAt       string
		AppURL          string
	}{
		Subject:         subject,
		ContractID:      result.ContractID.String(),
		ContractNumber:  result.ContractNumber,
		ContractSubject: result.Subject,
		ExpiryDate:      result.ExpiryDate.Format(dateLayout),
		PreviousStatus:  result.PreviousStatus,
		NewStatus:       result.NewStatus,
		ChangedAt:       result.ChangedAt.Format("02/01/2006 15:04"),
		AppURL:          strings.TrimRight(s.config.AppURL, "/"),
	}
	if result.SuccessorExpiry != nil {
		data.SuccessorExpiry = result.SuccessorExpiry.Format(dateLayout)
	}

	return s.renderTemplate("status_change.html", data)
}

type digestRow struct {
	ContractNumber string
	Subject        string
	ExpiryDate     string
	PreviousStatus string
	NewStatus      string
	Successor      string
}

func (s *EmailService) renderBatchDigest(subject string, digest BatchDigest) (string, error) {
	rows := make([]digestRow, 0, len(digest.Results))
	for _, r := range digest.Results {
		row := digestRow{
			ContractNumber: r.ContractNumber,
			Subject:        r.Subject,
			ExpiryDate:     r.ExpiryDate.Format(dateLayout),
			PreviousStatus: r.PreviousStatus,
			NewStatus:      r.NewStatus,
		}
		if r.SuccessorExpiry != nil {
			row.Successor = "fino al " + r.SuccessorExpiry.Format(dateLayout)
		}
		rows = append(rows, row)
	}

	data := struct {
		Subject       string
		Job           string
		RunAt         string
		Rows          []digestRow
		HasAttachment bool
		AppURL        string
	}{
		Subject:       subject,
		Job:           digest.Job,
		RunAt:         digest.RunAt.Format("02/01/2006 15:04"),
		Rows:          rows,
		HasAttachment: digest.Attachment != nil,
		AppURL:        s.config.AppURL,
	}

	return s.renderTemplate("batch_digest.html", data)
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
