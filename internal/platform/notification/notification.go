// Package notification provides template-rendered booking notifications with
// retry logic and a fire-and-forget dispatcher. Delivery failures are logged
// and never propagate to the caller: a booking must not roll back because an
// email bounced.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Type represents the channel used to deliver a notification.
type Type string

const (
	TypeEmail Type = "email"
	TypeSMS   Type = "sms"
)

// Notification represents a single outbound notification.
type Notification struct {
	ID           string            `json:"id"`
	Type         Type              `json:"type"`
	Recipient    string            `json:"recipient"`
	Subject      string            `json:"subject,omitempty"`
	Body         string            `json:"body"`
	TemplateID   string            `json:"template_id,omitempty"`
	TemplateData map[string]string `json:"template_data,omitempty"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	SentAt       *time.Time        `json:"sent_at,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// EmailSender is the interface for sending email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender is the interface for sending SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Template defines a reusable notification template.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Type    Type   `json:"type"`
}

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "booking-created",
			Name:    "Booking Received",
			Subject: "Your booking at {{vendor_name}}",
			Body:    "Hi {{customer_name}}, we received your booking for {{service_name}} on {{date}} at {{time}}. The salon will confirm it shortly.",
			Type:    TypeEmail,
		},
		{
			ID:      "booking-confirmed",
			Name:    "Booking Confirmed",
			Subject: "Confirmed: {{service_name}} on {{date}}",
			Body:    "Hi {{customer_name}}, your appointment for {{service_name}} on {{date}} at {{time}} is confirmed.",
			Type:    TypeEmail,
		},
		{
			ID:      "booking-cancelled",
			Name:    "Booking Cancelled",
			Subject: "Cancelled: {{service_name}} on {{date}}",
			Body:    "Hi {{customer_name}}, your appointment for {{service_name}} on {{date}} at {{time}} has been cancelled.",
			Type:    TypeEmail,
		},
		{
			ID:      "vendor-new-booking",
			Name:    "New Booking (Vendor)",
			Subject: "New booking request for {{service_name}}",
			Body:    "{{customer_name}} requested {{service_name}} on {{date}} at {{time}}. Review it in your dashboard.",
			Type:    TypeEmail,
		},
		{
			ID:      "vendor-approved",
			Name:    "Vendor Approved",
			Subject: "Your salon is live on SalonHub",
			Body:    "Congratulations {{vendor_name}}, your profile has been approved and is now visible to customers.",
			Type:    TypeEmail,
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render produces the subject and body for a template with the given data.
// Placeholders use {{key}} syntax.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}
	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// ErrUnsupportedType is returned when no sender is configured for a channel.
var ErrUnsupportedType = errors.New("unsupported notification type")

// Dispatcher renders and sends notifications with bounded retries.
type Dispatcher struct {
	templates *TemplateEngine
	email     EmailSender
	sms       SMSSender
	logger    zerolog.Logger

	maxAttempts int
	retryDelay  time.Duration
}

// NewDispatcher creates a Dispatcher. Either sender may be nil; sending on a
// channel without a sender fails with ErrUnsupportedType.
func NewDispatcher(templates *TemplateEngine, email EmailSender, sms SMSSender, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		templates:   templates,
		email:       email,
		sms:         sms,
		logger:      logger,
		maxAttempts: 3,
		retryDelay:  2 * time.Second,
	}
}

// Send renders the template and delivers the notification, retrying transient
// failures. It returns the final notification record.
func (d *Dispatcher) Send(ctx context.Context, typ Type, recipient, templateID string, data map[string]string) (*Notification, error) {
	subject, body, err := d.templates.Render(templateID, data)
	if err != nil {
		return nil, err
	}

	n := &Notification{
		ID:           uuid.New().String(),
		Type:         typ,
		Recipient:    recipient,
		Subject:      subject,
		Body:         body,
		TemplateID:   templateID,
		TemplateData: data,
		Status:       "pending",
		CreatedAt:    time.Now(),
	}

	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		lastErr = d.deliver(ctx, n)
		if lastErr == nil {
			now := time.Now()
			n.Status = "sent"
			n.SentAt = &now
			return n, nil
		}
		if errors.Is(lastErr, ErrUnsupportedType) {
			break
		}
		select {
		case <-ctx.Done():
			n.Status = "failed"
			n.Error = ctx.Err().Error()
			return n, ctx.Err()
		case <-time.After(d.retryDelay):
		}
	}

	n.Status = "failed"
	n.Error = lastErr.Error()
	return n, lastErr
}

// SendAsync delivers in the background. Failures are logged, never returned.
func (d *Dispatcher) SendAsync(typ Type, recipient, templateID string, data map[string]string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := d.Send(ctx, typ, recipient, templateID, data); err != nil {
			d.logger.Error().
				Err(err).
				Str("template", templateID).
				Str("recipient", recipient).
				Msg("notification delivery failed")
		}
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, n *Notification) error {
	switch n.Type {
	case TypeEmail:
		if d.email == nil {
			return ErrUnsupportedType
		}
		return d.email.SendEmail(ctx, n.Recipient, n.Subject, n.Body)
	case TypeSMS:
		if d.sms == nil {
			return ErrUnsupportedType
		}
		return d.sms.SendSMS(ctx, n.Recipient, n.Body)
	default:
		return ErrUnsupportedType
	}
}

// LogSender writes outbound messages to the log instead of a real provider.
// Used in development and tests.
type LogSender struct {
	Logger zerolog.Logger
}

func (s *LogSender) SendEmail(_ context.Context, to, subject, body string) error {
	s.Logger.Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("email (log sender)")
	return nil
}

func (s *LogSender) SendSMS(_ context.Context, to, body string) error {
	s.Logger.Info().Str("to", to).Str("body", body).Msg("sms (log sender)")
	return nil
}
