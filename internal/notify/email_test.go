package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSendGrid struct {
	sent   *mail.SGMailV3
	status int
	err    error
}

func (f *fakeSendGrid) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = email
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status, Body: "{}"}, nil
}

func bookingEmail() EmailMessage {
	return EmailMessage{
		To:        "thandi@example.com",
		ToName:    "Thandi Nkosi",
		Subject:   "New Booking Received",
		Body:      "A new booking has been received for Reiki Session",
		Reference: "5f1c2d7e-0000-4000-8000-000000000001",
	}
}

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{FromEmail: "no-reply@avenrae.com"}, nil))
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "SG.test", FromEmail: "no-reply@avenrae.com"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, "Avenrae", sender.from.Name)
	assert.Equal(t, "no-reply@avenrae.com", sender.from.Address)
}

func TestSendGridSender_SendAttachesReference(t *testing.T) {
	client := &fakeSendGrid{status: 202}
	sender := newSendGridSender(client, SendGridConfig{FromEmail: "no-reply@avenrae.com", FromName: "Avenrae Bookings", Sandbox: true}, nil)

	require.NoError(t, sender.Send(context.Background(), bookingEmail()))

	require.NotNil(t, client.sent)
	assert.Equal(t, "Avenrae Bookings", client.sent.From.Name)
	assert.Equal(t, "New Booking Received", client.sent.Subject)
	assert.Equal(t, "5f1c2d7e-0000-4000-8000-000000000001", client.sent.CustomArgs["reference"])
	assert.Contains(t, client.sent.Categories, "booking-notification")
	require.NotNil(t, client.sent.MailSettings)
	assert.True(t, *client.sent.MailSettings.SandboxMode.Enable)
}

func TestSendGridSender_SendRejectedStatus(t *testing.T) {
	sender := newSendGridSender(&fakeSendGrid{status: 429}, SendGridConfig{FromEmail: "no-reply@avenrae.com"}, nil)

	err := sender.Send(context.Background(), bookingEmail())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestSendGridSender_SendTransportError(t *testing.T) {
	sender := newSendGridSender(&fakeSendGrid{err: errors.New("tls handshake timeout")}, SendGridConfig{}, nil)

	err := sender.Send(context.Background(), bookingEmail())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tls handshake timeout")
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{}
	assert.Error(t, sender.Send(context.Background(), bookingEmail()))
}

func TestSendersRejectMissingRecipient(t *testing.T) {
	msg := bookingEmail()
	msg.To = ""

	client := &fakeSendGrid{status: 202}
	assert.ErrorIs(t, newSendGridSender(client, SendGridConfig{}, nil).Send(context.Background(), msg), errNoRecipient)
	assert.Nil(t, client.sent)
	assert.ErrorIs(t, NewStubEmailSender(nil).Send(context.Background(), msg), errNoRecipient)
}

func TestStubEmailSender_Send(t *testing.T) {
	assert.NoError(t, NewStubEmailSender(nil).Send(context.Background(), bookingEmail()))
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestNewSESSender_NilClient(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{FromEmail: "no-reply@avenrae.com"}, nil))
}

func TestSESSender_Send_BuildsMessage(t *testing.T) {
	api := &fakeSES{}
	sender := newSESSender(api, SESConfig{FromEmail: "no-reply@avenrae.com"}, nil)

	require.NoError(t, sender.Send(context.Background(), bookingEmail()))

	assert.Equal(t, `"Avenrae" <no-reply@avenrae.com>`, aws.ToString(api.input.FromEmailAddress))
	assert.Equal(t, []string{`"Thandi Nkosi" <thandi@example.com>`}, api.input.Destination.ToAddresses)
	simple := api.input.Content.Simple
	assert.Equal(t, "New Booking Received", aws.ToString(simple.Subject.Data))
	assert.NotNil(t, simple.Body.Text)
	assert.Nil(t, simple.Body.Html)
	require.Len(t, api.input.EmailTags, 1)
	assert.Equal(t, "reference", aws.ToString(api.input.EmailTags[0].Name))
}

func TestSESSender_Send_WrapsError(t *testing.T) {
	sender := newSESSender(&fakeSES{err: errors.New("throttled")}, SESConfig{FromEmail: "no-reply@avenrae.com"}, nil)
	err := sender.Send(context.Background(), bookingEmail())
	if err == nil || !strings.Contains(err.Error(), "throttled") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
