package notify

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"partnerhub/internal/platform/config"
)

// Sender delivers one email and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) (string, error)
}

// DisabledSender fails every send. Used when no email credentials are
// configured; affected rows end up email_status failed and can be resent
// once the credentials arrive.
type DisabledSender struct{}

func (DisabledSender) Send(ctx context.Context, to, subject, htmlBody string) (string, error) {
	return "", fmt.Errorf("email sending is not configured")
}

// SESSender sends through AWS SES v2.
type SESSender struct {
	client *sesv2.Client
	from   string
}

func NewSESSender(cfg config.EmailConfig) (*SESSender, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("email access key or secret key is empty")
	}

	cred := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(cred),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, err
	}

	from := cfg.FromAddress
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
	}

	return &SESSender{
		client: sesv2.NewFromConfig(awsCfg),
		from:   from,
	}, nil
}

func (s *SESSender) Send(ctx context.Context, to, subject, htmlBody string) (string, error) {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: &s.from,
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
				},
			},
		},
	}

	output, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return "", err
	}
	if output == nil || output.MessageId == nil {
		return "", fmt.Errorf("send succeeded but no message id returned")
	}
	return *output.MessageId, nil
}
