package gumroad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"payout-sync/internal/models"
)

// Every failure leaving this package carries a message fit to show a
// person directly; callers never see transport internals.
const (
	MsgBadRequest        = "Bad request. Please check your input."
	MsgInvalidToken      = "Invalid access token. Please check your credentials."
	MsgRequestFailed     = "Request failed. Please try again."
	MsgNotFound          = "The requested resource was not found."
	MsgServerError       = "Server error. Please try again later."
	MsgTimeout           = "Connection timed out. Please check your internet connection."
	MsgNoConnection      = "No internet connection. Please check your network."
	MsgUnknown           = "An unknown error occurred"
	MsgMissingCredential = "Please enter your access token"
)

// APIError is a classified remote failure. StatusCode is zero for
// transport-level failures.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// classifyStatus maps a non-2xx response to its user-facing message.
// A structured error body wins over the status table when it carries a
// message of its own.
func classifyStatus(status int, body []byte) *APIError {
	var er models.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Message != nil && strings.TrimSpace(*er.Message) != "" {
		return &APIError{StatusCode: status, Message: *er.Message}
	}

	var msg string
	switch {
	case status == 400:
		msg = MsgBadRequest
	case status == 401:
		msg = MsgInvalidToken
	case status == 402:
		msg = MsgRequestFailed
	case status == 404:
		msg = MsgNotFound
	case status >= 500 && status <= 504:
		msg = MsgServerError
	default:
		msg = fmt.Sprintf("Request failed with code %d", status)
	}
	return &APIError{StatusCode: status, Message: msg}
}

// classifyTransport maps a failed round trip to its user-facing message.
func classifyTransport(err error) *APIError {
	if err == nil {
		return &APIError{Message: MsgUnknown}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Message: MsgTimeout}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &APIError{Message: MsgTimeout}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &APIError{Message: MsgNoConnection}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &APIError{Message: MsgNoConnection}
	}

	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = MsgUnknown
	}
	return &APIError{Message: msg}
}
