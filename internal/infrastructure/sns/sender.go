package sns

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/kurtniculi26/RentAll/internal/config"
	"github.com/kurtniculi26/RentAll/internal/infrastructure/awsconf"
)

type publisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, opts ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Sender publishes transactional SMS through AWS SNS.
type Sender struct {
	client        publisher
	defaultPrefix string
}

func NewClient(ctx context.Context, cfg *config.Config) (*sns.Client, error) {
	awsCfg, err := awsconf.Load(ctx, cfg, cfg.SNSRegion)
	if err != nil {
		return nil, err
	}
	var opts []func(*sns.Options)
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, func(o *sns.Options) { o.BaseEndpoint = aws.String(cfg.AWSEndpointURL) })
	}
	return sns.NewFromConfig(awsCfg, opts...), nil
}

// NewSender builds a Sender. Local numbers (leading 0) are rewritten with
// countryPrefix, e.g. "+63".
func NewSender(client publisher, countryPrefix string) *Sender {
	return &Sender{client: client, defaultPrefix: countryPrefix}
}

func (s *Sender) SendSMS(ctx context.Context, to, message string) error {
	phone := s.e164(to)
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

func (s *Sender) e164(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "+") || s.defaultPrefix == "" {
		return phone
	}
	return s.defaultPrefix + strings.TrimPrefix(phone, "0")
}
