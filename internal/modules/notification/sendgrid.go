package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"travelplanner/internal/modules/booking"
)

const defaultBaseURL = "https://api.sendgrid.com"

// EmailSender delivers booking summaries through the SendGrid v3 mail API.
// With no API key configured it logs and skips, so local runs need no mail
// account.
type EmailSender struct {
	apiKey    string
	fromEmail string
	fromName  string
	baseURL   string
	client    *http.Client
}

func NewEmailSender(apiKey, fromEmail, fromName, baseURL string) *EmailSender {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &EmailSender{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailPayload struct {
	Personalizations []struct {
		To []mailAddress `json:"to"`
	} `json:"personalizations"`
	From    mailAddress `json:"from"`
	Subject string      `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func (s *EmailSender) SendConfirmation(ctx context.Context, toEmail, toName string, summary *booking.Summary) error {
	if s.apiKey == "" {
		log.Printf("email_skipped reason=no_api_key to=%s trip_id=%s", toEmail, summary.TripID)
		return nil
	}

	subject := "Your trip is booked"
	if !summary.AllConfirmed {
		subject = "Your trip booking needs attention"
	}

	var payload mailPayload
	payload.Personalizations = make([]struct {
		To []mailAddress `json:"to"`
	}, 1)
	payload.Personalizations[0].To = []mailAddress{{Email: toEmail, Name: toName}}
	payload.From = mailAddress{Email: s.fromEmail, Name: s.fromName}
	payload.Subject = subject
	payload.Content = []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{{Type: "text/plain", Value: summary.Text()}}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, string(detail))
	}
	log.Printf("email_sent to=%s trip_id=%s subject=%q", toEmail, summary.TripID, subject)
	return nil
}
