// Package email sends family invite mail through Amazon SES. With no
// sender address configured the service disables itself and every send
// becomes a logged no-op.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

type Service struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
	logger    *slog.Logger
}

func NewService(ctx context.Context, region, fromEmail, fromName string, logger *slog.Logger) (*Service, error) {
	log := logger.With("component", "email")

	if fromEmail == "" {
		log.Info("email disabled, no sender address configured")
		return &Service{enabled: false, logger: log}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	log.Info("email enabled", "from", fromEmail, "region", region)
	return &Service{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		logger:    log,
	}, nil
}

func (s *Service) Enabled() bool {
	return s.enabled
}

// SendFamilyInvite mails the parent's family code to a child's address
// so they can register into the right household.
func (s *Service) SendFamilyInvite(ctx context.Context, toEmail, parentName, familyCode string) error {
	if !s.enabled {
		s.logger.Info("skipping invite, email disabled", "to", toEmail)
		return nil
	}

	subject := fmt.Sprintf("%s invited you to KidQuest", parentName)
	textBody := fmt.Sprintf(`Hi,

%s has invited you to join their family on KidQuest.

Use this family code when you sign up:

    %s

Enter it exactly as shown.
`, parentName, familyCode)

	htmlBody := fmt.Sprintf(`<html><body>
<p>Hi,</p>
<p>%s has invited you to join their family on KidQuest.</p>
<p>Use this family code when you sign up:</p>
<p style="font-size: 24px; font-family: monospace; letter-spacing: 4px;"><strong>%s</strong></p>
<p>Enter it exactly as shown.</p>
</body></html>`, parentName, familyCode)

	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *Service) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("send email to %s: %w", toEmail, err)
	}

	s.logger.Info("email sent", "to", toEmail, "subject", subject)
	return nil
}
