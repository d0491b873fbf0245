package sms

import "context"

// DeliveryStatus reports how a message left the system.
type DeliveryStatus string

const (
	StatusSent     DeliveryStatus = "sent"
	StatusFailed   DeliveryStatus = "failed"
	StatusFallback DeliveryStatus = "fallback"
)

// DeliveryResult is what a Channel hands back. A non-sent status is not an
// error: callers degrade to the fallback link and carry on.
type DeliveryResult struct {
	Status       DeliveryStatus `json:"status"`
	ProviderRef  string         `json:"provider_ref,omitempty"`
	FallbackLink string         `json:"fallback_link,omitempty"`
}

// Channel is the outbound SMS boundary. Implementations must never block
// the calling operation on provider failures; they report StatusFailed and
// let the caller fall back.
type Channel interface {
	Send(ctx context.Context, phone, message string) DeliveryResult
}
