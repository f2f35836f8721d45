package bootstrap

import (
	"context"
	"fmt"

	appconfig "github.com/avenrae/avenrae-api/internal/config"
	"github.com/avenrae/avenrae-api/internal/notify"
	"github.com/avenrae/avenrae-api/pkg/logging"
)

// BuildEmailSender picks the notification transport from EMAIL_PROVIDER and
// reports which one was chosen. Unknown or unconfigured providers fall back
// to the stub sender outside production.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, string, error) {
	if cfg == nil {
		return nil, "", fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
			Sandbox:   cfg.SendGridSandbox,
		}, logger)
		if sender != nil {
			return sender, "sendgrid", nil
		}
		if cfg.IsProduction() {
			return nil, "", fmt.Errorf("bootstrap: SENDGRID_API_KEY is required for the sendgrid provider")
		}
		logger.Warn("sendgrid selected without api key; using stub email sender")
	case "ses":
		client, err := NewSESClient(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		return notify.NewSESSender(client, notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger), "ses", nil
	case "", "stub":
	default:
		if cfg.IsProduction() {
			return nil, "", fmt.Errorf("bootstrap: unknown EMAIL_PROVIDER %q", cfg.EmailProvider)
		}
		logger.Warn("unknown email provider; using stub email sender", "provider", cfg.EmailProvider)
	}
	return notify.NewStubEmailSender(logger), "stub", nil
}
