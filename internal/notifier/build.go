package notifier

import (
	"errors"

	"github.com/pfrederiksen/ski-report/internal/config"
)

// Disabled names a channel that was not built and why
type Disabled struct {
	Name   string
	Reason string
}

// FromConfig builds every enabled channel in a fixed order: telegram,
// twitter, sms. Channels switched off or missing credentials are skipped and
// listed in disabled; they never produce a delivery result.
func FromConfig(cfg *config.Config) (channels []Channel, disabled []Disabled, err error) {
	add := func(name string, toggle *bool, build func() (Channel, error)) error {
		if !config.Enabled(toggle) {
			disabled = append(disabled, Disabled{Name: name, Reason: "disabled in configuration"})
			return nil
		}
		ch, err := build()
		if errors.Is(err, ErrNotConfigured) {
			disabled = append(disabled, Disabled{Name: name, Reason: err.Error()})
			return nil
		}
		if err != nil {
			return err
		}
		channels = append(channels, ch)
		return nil
	}

	steps := []struct {
		name   string
		toggle *bool
		build  func() (Channel, error)
	}{
		{ChannelTelegram, cfg.Telegram.Enabled, func() (Channel, error) {
			return NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		}},
		{ChannelTwitter, cfg.Twitter.Enabled, func() (Channel, error) {
			return NewTwitterNotifier(TwitterCredentials{
				APIKey:       cfg.Twitter.APIKey,
				APISecret:    cfg.Twitter.APISecret,
				AccessToken:  cfg.Twitter.AccessToken,
				AccessSecret: cfg.Twitter.AccessSecret,
			}, cfg.Hashtags)
		}},
		{ChannelSMS, cfg.SMS.Enabled, func() (Channel, error) {
			gateway, err := NewEmailGateway(cfg.SMS.SMTPHost, cfg.SMS.SMTPPort,
				cfg.SMS.SMTPUsername, cfg.SMS.SMTPPassword, cfg.SMS.From)
			if err != nil {
				return nil, err
			}
			return NewSMSNotifier(gateway, cfg.SMS.Recipients)
		}},
	}

	for _, step := range steps {
		if err := add(step.name, step.toggle, step.build); err != nil {
			return nil, nil, err
		}
	}
	return channels, disabled, nil
}
