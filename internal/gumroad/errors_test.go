package gumroad

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus_Table(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{400, MsgBadRequest},
		{401, MsgInvalidToken},
		{402, MsgRequestFailed},
		{404, MsgNotFound},
		{500, MsgServerError},
		{502, MsgServerError},
		{504, MsgServerError},
		{418, "Request failed with code 418"},
		{403, "Request failed with code 403"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			apiErr := classifyStatus(tt.status, nil)
			assert.Equal(t, tt.expected, apiErr.Message)
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestClassifyStatus_BodyMessageWins(t *testing.T) {
	body := []byte(`{"success":false,"message":"The access token is invalid."}`)
	apiErr := classifyStatus(401, body)
	assert.Equal(t, "The access token is invalid.", apiErr.Message)
}

func TestClassifyStatus_EmptyBodyMessageFallsBack(t *testing.T) {
	body := []byte(`{"success":false,"message":"   "}`)
	apiErr := classifyStatus(401, body)
	assert.Equal(t, MsgInvalidToken, apiErr.Message)
}

func TestClassifyStatus_MalformedBodyFallsBack(t *testing.T) {
	apiErr := classifyStatus(500, []byte("<html>bad gateway</html>"))
	assert.Equal(t, MsgServerError, apiErr.Message)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyTransport(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"deadline", context.DeadlineExceeded, MsgTimeout},
		{"net timeout", timeoutErr{}, MsgTimeout},
		{"dns failure", &net.DNSError{Err: "no such host", Name: "api.example.com"}, MsgNoConnection},
		{"conn refused", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, MsgNoConnection},
		{"other", errors.New("boom"), "boom"},
		{"nil", nil, MsgUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyTransport(tt.err).Message)
		})
	}
}
