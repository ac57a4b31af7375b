package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender   `json:"sender"`
	To          []BrevoTo     `json:"to"`
	Subject     string        `json:"subject"`
	HTMLContent string        `json:"htmlContent"`
	ReplyTo     *BrevoReplyTo `json:"replyTo,omitempty"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type BrevoReplyTo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Sender sends transactional emails. Nil or empty API key = no-op.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, firstName string) error
	SendApplicationReceived(ctx context.Context, toEmail, volunteerName, eventTitle, eventLink string) error
	SendDecision(ctx context.Context, toEmail, eventTitle string, approved bool, feedback string) error
	SendReset(ctx context.Context, toEmail, eventTitle string) error
}

// BrevoClient sends emails via Brevo (Sendinblue) API. Env: SENDINBLUE_API_KEY, MAIL_FROM.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@volunhub.org"
}

// send sends one email via Brevo API.
func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "VolunHub"},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
		ReplyTo:     &BrevoReplyTo{Email: "support@volunhub.org", Name: "VolunHub Support"},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPI, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendWelcome sends the welcome email after account creation.
func (c *BrevoClient) SendWelcome(ctx context.Context, toEmail, firstName string) error {
	if c.APIKey == "" {
		return nil
	}
	if firstName == "" {
		firstName = "there"
	}
	return c.send(ctx, toEmail, "Welcome to VolunHub!", EmailLayout(welcomeContent(firstName)))
}

// SendApplicationReceived notifies the organizer that a volunteer applied.
func (c *BrevoClient) SendApplicationReceived(ctx context.Context, toEmail, volunteerName, eventTitle, eventLink string) error {
	if c.APIKey == "" {
		return nil
	}
	subject := fmt.Sprintf("New application for %s", eventTitle)
	return c.send(ctx, toEmail, subject, EmailLayout(applicationReceivedContent(volunteerName, eventTitle, eventLink)))
}

// SendDecision notifies the volunteer of an approval or rejection, including
// the organizer's feedback when present.
func (c *BrevoClient) SendDecision(ctx context.Context, toEmail, eventTitle string, approved bool, feedback string) error {
	if c.APIKey == "" {
		return nil
	}
	subject := fmt.Sprintf("Your application for %s was not selected", eventTitle)
	if approved {
		subject = fmt.Sprintf("You're in! Application for %s approved", eventTitle)
	}
	return c.send(ctx, toEmail, subject, EmailLayout(decisionContent(eventTitle, approved, feedback)))
}

// SendReset notifies the volunteer that their application went back to review.
func (c *BrevoClient) SendReset(ctx context.Context, toEmail, eventTitle string) error {
	if c.APIKey == "" {
		return nil
	}
	subject := fmt.Sprintf("Your application for %s is under review again", eventTitle)
	return c.send(ctx, toEmail, subject, EmailLayout(resetContent(eventTitle)))
}
