package activity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/meetfeed/meetfeed-client/internal/domain"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-456")}, nil
}

func TestSQSSinkPublish(t *testing.T) {
	client := &fakeSQSClient{}
	sink := &sqsSink{id: "q", queueURL: "https://example.com/queue", client: client, log: noopLogger{}}

	if err := sink.Publish(context.Background(), NewSwipe("u1", "e1", domain.ActionSkip)); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["action"]
	if !ok || aws.ToString(attr.StringValue) != "skip" || aws.ToString(attr.DataType) != "String" {
		t.Fatalf("action attribute missing or wrong: %#v", attr)
	}
	if body := aws.ToString(client.input.MessageBody); !strings.Contains(body, `"event_id":"e1"`) {
		t.Fatalf("MessageBody missing event id: %s", body)
	}
}

func TestSQSSinkPublishError(t *testing.T) {
	sink := &sqsSink{id: "q", queueURL: "u", client: &fakeSQSClient{err: errors.New("boom")}, log: noopLogger{}}
	if err := sink.Publish(context.Background(), Event{Kind: KindSwipe}); err == nil {
		t.Fatalf("expected error from Publish")
	}
}

func TestSNSSinkPublish(t *testing.T) {
	client := &fakeSNSClient{}
	sink := &snsSink{id: "t", topicARN: "arn:aws:sns:::topic", client: client, log: noopLogger{}}

	if err := sink.Publish(context.Background(), NewEvent(KindEventDeleted, "u1", "e2")); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if got := aws.ToString(client.input.TopicArn); got != "arn:aws:sns:::topic" {
		t.Fatalf("TopicArn = %s", got)
	}
	if attr := client.input.MessageAttributes["kind"]; aws.ToString(attr.StringValue) != string(KindEventDeleted) {
		t.Fatalf("kind attribute wrong: %#v", attr)
	}
	if _, ok := client.input.MessageAttributes["action"]; ok {
		t.Fatalf("action attribute must be omitted when empty")
	}
}

func TestSNSSinkPublishError(t *testing.T) {
	sink := &snsSink{id: "t", topicARN: "arn", client: &fakeSNSClient{err: errors.New("boom")}, log: noopLogger{}}
	if err := sink.Publish(context.Background(), Event{Kind: KindSwipe}); err == nil {
		t.Fatalf("expected error from Publish")
	}
}

func TestLoadAWSConfigStaticCredentials(t *testing.T) {
	cfg, err := loadAWSConfig(context.Background(), AWSConfig{
		Region:          "eu-central-1",
		Endpoint:        "http://localhost:4566",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
	})
	if err != nil {
		t.Fatalf("loadAWSConfig: %v", err)
	}
	if cfg.Region != "eu-central-1" || aws.ToString(cfg.BaseEndpoint) != "http://localhost:4566" {
		t.Fatalf("unexpected config region=%s endpoint=%s", cfg.Region, aws.ToString(cfg.BaseEndpoint))
	}
	creds, err := cfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if creds.AccessKeyID != "AKIDEXAMPLE" {
		t.Fatalf("expected static credentials, got %q", creds.AccessKeyID)
	}
}
