// Package sns publishes notifications to an AWS SNS topic.
package sns

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

var ErrTopicRequired = errors.New("sns: topic arn is required")

// Config configures the SNS client. Empty keys fall back to the default
// credential chain; Endpoint targets LocalStack and similar.
type Config struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	TopicARN  string
}

type publishAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Publisher sends messages to one topic.
type Publisher struct {
	api   publishAPI
	topic string
}

func New(ctx context.Context, cfg Config) (*Publisher, error) {
	if cfg.TopicARN == "" {
		return nil, ErrTopicRequired
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("sns: load aws config: %w", err)
	}

	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Publisher{api: client, topic: cfg.TopicARN}, nil
}

// Publish sends message with string attributes and returns the SNS message id.
func (p *Publisher) Publish(ctx context.Context, subject, message string, attrs map[string]string) (string, error) {
	in := &sns.PublishInput{
		TopicArn: aws.String(p.topic),
		Message:  aws.String(message),
	}
	if subject != "" {
		in.Subject = aws.String(subject)
	}
	if len(attrs) > 0 {
		in.MessageAttributes = make(map[string]types.MessageAttributeValue, len(attrs))
		for k, v := range attrs {
			in.MessageAttributes[k] = types.MessageAttributeValue{
				DataType:    aws.String("String"),
				StringValue: aws.String(v),
			}
		}
	}

	out, err := p.api.Publish(ctx, in)
	if err != nil {
		return "", fmt.Errorf("sns: publish: %w", err)
	}

	return aws.ToString(out.MessageId), nil
}
