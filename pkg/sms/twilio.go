package sms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioProvider sends messages through the Twilio REST API
type TwilioProvider struct {
	client *twilio.RestClient
}

// NewTwilioProvider creates a provider for the given account
func NewTwilioProvider(accountSID, authToken string) *TwilioProvider {
	return &TwilioProvider{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
	}
}

// SendSMS sends one message. Provider failures come back as *ProviderError.
func (p *TwilioProvider) SendSMS(ctx context.Context, to, from, body string) (*SMSResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	msg, err := p.client.Api.CreateMessage(params)
	if err != nil {
		return nil, providerError(err)
	}

	res := &SMSResult{DateCreated: time.Now().UTC()}
	if msg.Sid != nil {
		res.SID = *msg.Sid
	}
	if msg.Status != nil {
		res.Status = *msg.Status
	}
	return res, nil
}

// GetMessageStatus fetches the delivery state of a sent message
func (p *TwilioProvider) GetMessageStatus(ctx context.Context, sid string) (*MessageStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	msg, err := p.client.Api.FetchMessage(sid, &openapi.FetchMessageParams{})
	if err != nil {
		return nil, providerError(err)
	}

	out := &MessageStatus{SID: sid}
	if msg.Status != nil {
		out.Status = *msg.Status
	}
	if msg.ErrorCode != nil {
		out.ErrorCode = *msg.ErrorCode
	}
	if msg.ErrorMessage != nil {
		out.ErrorMsg = *msg.ErrorMessage
	}
	return out, nil
}

func providerError(err error) error {
	var restErr *twilioclient.TwilioRestError
	if errors.As(err, &restErr) {
		return &ProviderError{
			Code:    restErr.Code,
			Message: UserMessage(restErr.Code, restErr.Message),
			Err:     err,
		}
	}
	return &ProviderError{Message: fmt.Sprintf("twilio request failed: %v", err), Err: err}
}
