package sms

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// TwilioConfig holds provider credentials and the sender number.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

// TwilioChannel sends SMS through the Twilio REST API.
type TwilioChannel struct {
	client *twilio.RestClient
	from   string
	logger *zap.Logger
}

func NewTwilioChannel(cfg TwilioConfig, logger *zap.Logger) (*TwilioChannel, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil, fmt.Errorf("missing twilio credentials")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioChannel{client: client, from: cfg.From, logger: logger}, nil
}

// Send delivers one SMS. Provider errors are logged and reported as
// StatusFailed so the caller can produce a manual fallback link.
func (t *TwilioChannel) Send(ctx context.Context, phone, message string) DeliveryResult {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(phone)
	params.SetBody(message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		t.logger.Warn("sms delivery failed",
			zap.String("phone", phone),
			zap.Error(err),
		)
		return DeliveryResult{Status: StatusFailed}
	}

	result := DeliveryResult{Status: StatusSent}
	if resp.Sid != nil {
		result.ProviderRef = *resp.Sid
	}
	return result
}

// NoopChannel is used when no SMS provider is configured (local
// development); every send degrades to the fallback link path.
type NoopChannel struct{}

func (NoopChannel) Send(ctx context.Context, phone, message string) DeliveryResult {
	return DeliveryResult{Status: StatusFailed}
}
