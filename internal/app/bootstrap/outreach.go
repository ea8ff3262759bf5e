package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/talentbridge/sales-crm-platform/internal/config"
	"github.com/talentbridge/sales-crm-platform/internal/outreach"
	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

// BuildEmailSender selects the outbound email provider from configuration.
// Unknown or incomplete providers fall back to the logging stub so dispatch
// keeps working in development.
func BuildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) outreach.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.EmailProvider {
	case "sendgrid":
		sender := outreach.NewSendGridSender(outreach.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			logger.Info("email provider configured", "provider", "sendgrid")
			return sender
		}
		logger.Warn("sendgrid selected but api key missing; using stub sender")
	case "ses":
		sender := outreach.NewSESSender(sesv2.NewFromConfig(awsCfg), outreach.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			logger.Info("email provider configured", "provider", "ses")
			return sender
		}
		logger.Warn("ses selected but client unavailable; using stub sender")
	case "stub", "":
	default:
		logger.Warn("unknown email provider; using stub sender", "provider", cfg.EmailProvider)
	}
	return outreach.NewStubEmailSender(logger)
}
