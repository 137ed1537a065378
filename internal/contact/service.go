package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/linkden/internal/settings"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	operationSubmit = "contact.submit"
	operationList   = "contact.list"
)

var (
	// ErrDeliveryFailed indicates the submission could not be stored or emailed.
	ErrDeliveryFailed  = errors.New("contact: delivery failed")
	errMissingDatabase = errors.New("database handle is required")
)

// Submission is a stored contact form message.
type Submission struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	ProfileID string    `gorm:"column:profile_id;size:190;not null;index" json:"-"`
	BlockID   *string   `gorm:"column:block_id;size:190" json:"blockId"`
	Name      string    `gorm:"column:name;size:200;not null" json:"name"`
	Email     string    `gorm:"column:email;size:320;not null" json:"email"`
	Message   string    `gorm:"column:message;type:text;not null" json:"message"`
	Phone     *string   `gorm:"column:phone;size:64" json:"phone"`
	Subject   *string   `gorm:"column:subject;size:200" json:"subject"`
	Company   *string   `gorm:"column:company;size:200" json:"company"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"createdAt"`
}

// TableName provides the explicit table binding for GORM.
func (Submission) TableName() string {
	return "contact_submissions"
}

// SettingsReader exposes the settings that steer delivery.
type SettingsReader interface {
	DeliveryMode(ctx context.Context) (settings.DeliveryMode, error)
	Get(ctx context.Context, key string) (string, bool, error)
}

// IDProvider issues row identifiers.
type IDProvider interface {
	NewID() (string, error)
}

type ServiceConfig struct {
	Database   *gorm.DB
	Settings   SettingsReader
	Mailer     Mailer
	IDProvider IDProvider
	Clock      func() time.Time
	Logger     *zap.Logger
}

// Service validates and delivers contact submissions.
type Service struct {
	db         *gorm.DB
	settings   SettingsReader
	mailer     Mailer
	idProvider IDProvider
	clock      func() time.Time
	logger     *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("contact: %w", errMissingDatabase)
	}
	if cfg.Settings == nil {
		return nil, errors.New("contact: settings reader is required")
	}
	if cfg.IDProvider == nil {
		return nil, errors.New("contact: id provider is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	mailer := cfg.Mailer
	if mailer == nil {
		mailer = LogMailer{Logger: logger}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		db:         cfg.Database,
		settings:   cfg.Settings,
		mailer:     mailer,
		idProvider: cfg.IDProvider,
		clock:      clock,
		logger:     logger,
	}, nil
}

// Submit validates the request and delivers it according to the
// contact_delivery setting. Validation failures are returned as FieldErrors.
//
// In email mode the submission is stored instead when no recipient is
// configured, so messages are never dropped silently.
func (s *Service) Submit(ctx context.Context, profileID string, request Request) (Submission, error) {
	if fieldErrs := Validate(request); len(fieldErrs) > 0 {
		return Submission{}, fieldErrs
	}
	clean := request.Normalize().Sanitize()
	if fieldErrs := Validate(clean); len(fieldErrs) > 0 {
		return Submission{}, fieldErrs
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		return Submission{}, fmt.Errorf("%s: %w", operationSubmit, err)
	}
	submission := Submission{
		ID:        id,
		ProfileID: profileID,
		BlockID:   optional(clean.BlockID),
		Name:      clean.Name,
		Email:     clean.Email,
		Message:   clean.Message,
		Phone:     optional(clean.Phone),
		Subject:   optional(clean.Subject),
		Company:   optional(clean.Company),
		CreatedAt: s.clock().UTC(),
	}

	mode, err := s.settings.DeliveryMode(ctx)
	if err != nil {
		s.logger.Warn("delivery mode unavailable, storing submission", zap.Error(err))
		mode = settings.DeliveryDatabase
	}
	recipient, _, err := s.settings.Get(ctx, settings.KeyContactEmail)
	if err != nil {
		s.logger.Warn("contact email setting unavailable", zap.Error(err))
	}
	recipient = strings.TrimSpace(recipient)

	store := mode.Stores()
	if mode.Emails() && recipient == "" {
		s.logger.Warn("contact email delivery requested without recipient, storing submission")
		store = true
	}

	if store {
		if err := s.db.WithContext(ctx).Create(&submission).Error; err != nil {
			s.logger.Error("contact submission store failed", zap.String("operation", operationSubmit), zap.Error(err))
			return Submission{}, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}
	}

	if mode.Emails() && recipient != "" {
		if err := s.mailer.Send(ctx, notificationFor(submission, recipient)); err != nil {
			if !store {
				s.logger.Error("contact email failed", zap.String("operation", operationSubmit), zap.Error(err))
				return Submission{}, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
			}
			s.logger.Warn("contact email failed, submission stored", zap.Error(err), zap.String("submission_id", submission.ID))
		}
	}
	return submission, nil
}

// List returns stored submissions for the profile, newest first.
func (s *Service) List(ctx context.Context, profileID string) ([]Submission, error) {
	var submissions []Submission
	err := s.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&submissions).Error
	if err != nil {
		s.logger.Error("contact list failed", zap.String("operation", operationList), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", operationList, err)
	}
	return submissions, nil
}

func notificationFor(submission Submission, recipient string) Email {
	subject := "New contact form message from " + submission.Name
	if submission.Subject != nil {
		subject = *submission.Subject
	}
	var body strings.Builder
	fmt.Fprintf(&body, "Name: %s\nEmail: %s\n", submission.Name, submission.Email)
	if submission.Phone != nil {
		fmt.Fprintf(&body, "Phone: %s\n", *submission.Phone)
	}
	if submission.Company != nil {
		fmt.Fprintf(&body, "Company: %s\n", *submission.Company)
	}
	body.WriteString("\n")
	body.WriteString(submission.Message)
	return Email{
		To:      []string{recipient},
		ReplyTo: submission.Email,
		Subject: subject,
		Text:    body.String(),
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
