package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// DefaultRelaySubject is sent as the subject when the visitor left it blank.
	DefaultRelaySubject = "New Contact Form Submission"

	DefaultAutoresponse = "Thank you for getting in touch! I'll get back to you within 24 hours.\n\nBest regards"
)

var ErrRelayRejected = errors.New("relay rejected submission")

// Relay delivers a valid submission to the hosted form relay.
type Relay interface {
	Send(ctx context.Context, s Submission) error
}

// FormSubmitEndpoint returns the FormSubmit ajax endpoint for an inbox.
func FormSubmitEndpoint(address string) string {
	return "https://formsubmit.co/ajax/" + address
}

type relayPayload struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Subject      string `json:"subject"`
	Message      string `json:"message"`
	Service      string `json:"service"`
	MailSubject  string `json:"_subject"`
	Autoresponse string `json:"_autoresponse"`
}

type relayResponse struct {
	Success truthy `json:"success"`
	Message string `json:"message"`
}

// truthy accepts the loose booleans relays answer with: true, "true", 1.
type truthy bool

func (t *truthy) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case bool:
		*t = truthy(x)
	case string:
		*t = truthy(strings.EqualFold(x, "true") || x == "1")
	case float64:
		*t = truthy(x != 0)
	default:
		*t = false
	}
	return nil
}

// FormSubmitRelay posts submissions as JSON to a FormSubmit-style endpoint.
type FormSubmitRelay struct {
	endpoint     string
	autoresponse string
	client       *http.Client
}

// NewFormSubmitRelay creates a relay client. A nil client uses a plain http.Client
// with no timeout; the caller's context bounds the call.
func NewFormSubmitRelay(endpoint, autoresponse string, client *http.Client) *FormSubmitRelay {
	if client == nil {
		client = &http.Client{}
	}
	if autoresponse == "" {
		autoresponse = DefaultAutoresponse
	}
	return &FormSubmitRelay{endpoint: endpoint, autoresponse: autoresponse, client: client}
}

// Send issues one POST and reports ErrRelayRejected unless the relay confirms success.
func (r *FormSubmitRelay) Send(ctx context.Context, s Submission) error {
	ctx, span := otel.Tracer("portfolio/contact").Start(ctx, "relay.send")
	defer span.End()

	subject := s.Subject
	if strings.TrimSpace(subject) == "" {
		subject = DefaultRelaySubject
	}

	body, err := json.Marshal(relayPayload{
		Name:         s.Name,
		Email:        s.Email,
		Phone:        s.Phone,
		Subject:      subject,
		Message:      s.Message,
		Service:      s.Service,
		MailSubject:  fmt.Sprintf("New Message from %s - Portfolio Contact", s.Name),
		Autoresponse: r.autoresponse,
	})
	if err != nil {
		return fmt.Errorf("encode relay payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return fmt.Errorf("relay request: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return fmt.Errorf("read relay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		span.SetStatus(codes.Error, "status")
		var out relayResponse
		if json.Unmarshal(raw, &out) == nil && out.Message != "" {
			return fmt.Errorf("%w: status %d: %s", ErrRelayRejected, resp.StatusCode, out.Message)
		}
		return fmt.Errorf("%w: status %d", ErrRelayRejected, resp.StatusCode)
	}

	var out relayResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		span.SetStatus(codes.Error, "decode body")
		return fmt.Errorf("%w: status %d, undecodable body: %v", ErrRelayRejected, resp.StatusCode, err)
	}
	if !out.Success {
		span.SetStatus(codes.Error, "rejected")
		if out.Message != "" {
			return fmt.Errorf("%w: status %d: %s", ErrRelayRejected, resp.StatusCode, out.Message)
		}
		return fmt.Errorf("%w: status %d", ErrRelayRejected, resp.StatusCode)
	}
	return nil
}
