package notifier

import (
	"context"
	"errors"

	"github.com/pfrederiksen/ski-report/internal/caption"
)

// Channel names.
const (
	ChannelTelegram = "telegram"
	ChannelTwitter  = "twitter"
	ChannelSMS      = "sms"
)

// ErrNotConfigured is returned by constructors when required credentials are missing.
var ErrNotConfigured = errors.New("channel not configured")

// Channel defines the interface for posting a bulletin to one platform
type Channel interface {
	// Name identifies the channel in results, logs and metrics
	Name() string
	// Variant describes the caption this channel wants
	Variant() caption.Variant
	// Send posts the image with its caption
	Send(ctx context.Context, image []byte, text string) error
}
