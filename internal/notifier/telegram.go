package notifier

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/ski-report/internal/caption"
	"github.com/pfrederiksen/ski-report/internal/telegram"
)

// TelegramNotifier posts the bulletin as a photo to a Telegram chat
type TelegramNotifier struct {
	client *telegram.Client
}

// NewTelegramNotifier creates a Telegram channel for chatID
func NewTelegramNotifier(botToken, chatID string) (*TelegramNotifier, error) {
	if botToken == "" || chatID == "" {
		return nil, fmt.Errorf("%w: telegram bot token and chat ID are required", ErrNotConfigured)
	}

	client, err := telegram.NewClient(botToken, chatID)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{client: client}, nil
}

// Name implements Channel.
func (n *TelegramNotifier) Name() string { return ChannelTelegram }

// Variant implements Channel.
func (n *TelegramNotifier) Variant() caption.Variant {
	return caption.Variant{MaxLength: telegram.MaxCaptionLength}
}

// Send implements Channel.
func (n *TelegramNotifier) Send(ctx context.Context, image []byte, text string) error {
	if err := n.client.SendPhoto(ctx, image, text); err != nil {
		return fmt.Errorf("posting photo to %s: %w", n.client.ChatID(), err)
	}
	return nil
}
