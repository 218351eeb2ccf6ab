package sns

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	in  *sns.PublishInput
	err error
}

func (f *fakePublisher) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.in = in
	return &sns.PublishOutput{}, f.err
}

func TestSendSMS_RewritesLocalNumber(t *testing.T) {
	f := &fakePublisher{}
	require.NoError(t, NewSender(f, "+63").SendSMS(context.Background(), "09171234567", "code 123456"))
	assert.Equal(t, "+639171234567", aws.ToString(f.in.PhoneNumber))
	assert.Equal(t, "Transactional", aws.ToString(f.in.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue))
}

func TestSendSMS_KeepsE164(t *testing.T) {
	f := &fakePublisher{}
	require.NoError(t, NewSender(f, "+63").SendSMS(context.Background(), "+15551234567", "hi"))
	assert.Equal(t, "+15551234567", aws.ToString(f.in.PhoneNumber))
}

func TestSendSMS_Error(t *testing.T) {
	err := NewSender(&fakePublisher{err: errors.New("opted out")}, "").SendSMS(context.Background(), "+1", "hi")
	assert.ErrorContains(t, err, "sns publish")
}
