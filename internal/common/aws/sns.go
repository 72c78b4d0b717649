// internal/common/aws/sns.go
package aws

import (
	"context"
	"unicode/utf8"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNS subjects must be shorter than 100 characters.
const maxSubjectLength = 99

// SNSAPI is the subset of *sns.Client used here.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSClient struct {
	api SNSAPI
}

func NewSNSClient(cfg awssdk.Config) *SNSClient {
	return &SNSClient{api: sns.NewFromConfig(cfg)}
}

func NewSNSClientWithAPI(api SNSAPI) *SNSClient {
	return &SNSClient{api: api}
}

// PublishMessage publishes to a topic and returns the SNS message ID.
func (s *SNSClient) PublishMessage(ctx context.Context, topicARN, subject, message string) (string, error) {
	input := &sns.PublishInput{
		TopicArn: awssdk.String(topicARN),
		Message:  awssdk.String(message),
	}
	if subject != "" {
		input.Subject = awssdk.String(truncate(subject, maxSubjectLength))
	}

	out, err := s.api.Publish(ctx, input)
	if err != nil {
		return "", err
	}
	return awssdk.ToString(out.MessageId), nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
