package email

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordResetWithoutSMTPLogsLink(t *testing.T) {
	var buf bytes.Buffer
	svc := NewEmailService(SMTPConfig{FrontendURL: "https://academy.test/"}, zerolog.New(&buf))

	require.NoError(t, svc.SendPasswordResetEmail("jane@academy.test", "Jane", "abc123"))
	assert.Contains(t, buf.String(), "https://academy.test/reset-password?token=abc123")
}

func TestPasswordResetSendsMessage(t *testing.T) {
	svc := NewEmailService(SMTPConfig{
		Host:        "smtp.academy.test",
		Port:        587,
		Username:    "mailer",
		Password:    "secret",
		FromName:    "Academy",
		FromEmail:   "no-reply@academy.test",
		AcademyName: "Academy",
		FrontendURL: "https://academy.test",
	}, zerolog.Nop()).(*EmailServiceImpl)

	var sentTo string
	var sent []byte
	svc.send = func(to string, msg []byte) error {
		sentTo, sent = to, msg
		return nil
	}

	require.NoError(t, svc.SendPasswordResetEmail("jane@academy.test", "Jane", "tok"))
	assert.Equal(t, "jane@academy.test", sentTo)
	msg := string(sent)
	assert.True(t, strings.HasPrefix(msg, "From: Academy <no-reply@academy.test>\r\n"))
	assert.Contains(t, msg, "Subject: Reset your Academy password\r\n")
	assert.Contains(t, msg, "https://academy.test/reset-password?token=tok")
}
