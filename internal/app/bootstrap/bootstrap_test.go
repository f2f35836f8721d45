package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/avenrae/avenrae-api/internal/config"
	"github.com/avenrae/avenrae-api/internal/notify"
)

func TestBuildRedisClientDisabledWithoutAddr(t *testing.T) {
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, nil, true))
	assert.Nil(t, BuildRedisClient(context.Background(), nil, nil, true))
}

func TestBuildRedisClientVerifiesPing(t *testing.T) {
	mr := miniredis.RunT(t)

	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, nil, true)
	require.NotNil(t, client)
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestBuildRedisClientUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &appconfig.Config{RedisAddr: addr}
	assert.Nil(t, BuildRedisClient(context.Background(), cfg, nil, true))
	// without verification the client is returned as configured
	client := BuildRedisClient(context.Background(), cfg, nil, false)
	require.NotNil(t, client)
	_ = client.Close()
}

func TestBuildEmailSender(t *testing.T) {
	tests := []struct {
		name     string
		cfg      appconfig.Config
		want     string
		wantErr  bool
		wantType any
	}{
		{"stub by default", appconfig.Config{}, "stub", false, &notify.StubEmailSender{}},
		{"sendgrid with key", appconfig.Config{EmailProvider: "sendgrid", SendGridAPIKey: "SG.test"}, "sendgrid", false, &notify.SendGridSender{}},
		{"sendgrid without key in dev", appconfig.Config{EmailProvider: "sendgrid"}, "stub", false, &notify.StubEmailSender{}},
		{"sendgrid without key in production", appconfig.Config{EmailProvider: "sendgrid", Env: "production"}, "", true, nil},
		{"unknown provider in dev", appconfig.Config{EmailProvider: "pigeon"}, "stub", false, &notify.StubEmailSender{}},
		{"unknown provider in production", appconfig.Config{EmailProvider: "pigeon", Env: "production"}, "", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			sender, provider, err := BuildEmailSender(context.Background(), &cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, provider)
			assert.IsType(t, tt.wantType, sender)
		})
	}
}

func TestBuildEmailSenderSES(t *testing.T) {
	cfg := &appconfig.Config{
		EmailProvider:       "ses",
		EmailFromAddress:    "no-reply@avenrae.com",
		AWSRegion:           "eu-west-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "test",
		AWSEndpointOverride: "http://localhost:4566",
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sender, provider, err := BuildEmailSender(ctx, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "ses", provider)
	assert.IsType(t, &notify.SESSender{}, sender)
}

func TestLoadAWSConfigUsesStaticCredentials(t *testing.T) {
	cfg := &appconfig.Config{AWSRegion: "af-south-1", AWSAccessKeyID: "AKIDTEST", AWSSecretAccessKey: "secret"}

	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "af-south-1", awsCfg.Region)

	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIDTEST", creds.AccessKeyID)
}
