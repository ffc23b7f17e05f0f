// Package sms sends text messages through a provider such as Twilio.
package sms

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured is returned when no provider credentials are set
var ErrNotConfigured = errors.New("sms provider is not configured")

// Provider defines the interface for SMS delivery providers (Twilio, etc.)
type Provider interface {
	SendSMS(ctx context.Context, to, from, body string) (*SMSResult, error)
	GetMessageStatus(ctx context.Context, sid string) (*MessageStatus, error)
}

// SMSResult holds the result of sending an SMS
type SMSResult struct {
	SID         string
	Status      string
	DateCreated time.Time
}

// MessageStatus holds the delivery status of an SMS
type MessageStatus struct {
	SID       string `json:"sid"`
	Status    string `json:"status"`
	ErrorCode int    `json:"errorCode,omitempty"`
	ErrorMsg  string `json:"errorMessage,omitempty"`
}

// ProviderError is a failure reported by the provider with its error code
type ProviderError struct {
	Code    int
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Provider error codes with dedicated user-facing messages
const (
	CodeInvalidNumber = 21211
	CodeNotMobile     = 21614
)

// UserMessage maps a provider error code to the message shown to users.
// Unknown codes fall back to the provider's own message.
func UserMessage(code int, providerMsg string) string {
	switch code {
	case CodeInvalidNumber:
		return "Invalid phone number format"
	case CodeNotMobile:
		return "Phone number is not a valid mobile number"
	}
	if providerMsg != "" {
		return providerMsg
	}
	return "Failed to send SMS"
}

// Disabled is the provider used when credentials are missing
type Disabled struct{}

func (Disabled) SendSMS(ctx context.Context, to, from, body string) (*SMSResult, error) {
	return nil, ErrNotConfigured
}

func (Disabled) GetMessageStatus(ctx context.Context, sid string) (*MessageStatus, error) {
	return nil, ErrNotConfigured
}
