package flow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fetcharr/fetcharr/pkg/media"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"deadline exceeded",
			fmt.Errorf("search: %w", context.DeadlineExceeded),
			timeoutErrorMessage,
		},
		{
			"network timeout",
			fmt.Errorf("get: %w", timeoutErr{}),
			timeoutErrorMessage,
		},
		{
			"unauthorized",
			&media.BackendError{Kind: "movie", Op: "search", Status: 401, Err: media.ErrProtocol},
			authErrorMessage,
		},
		{
			"forbidden",
			&media.BackendError{Kind: "series", Op: "request", Status: 403, Err: media.ErrRequestFailed},
			authErrorMessage,
		},
		{
			"server error",
			&media.BackendError{Kind: "movie", Op: "search", Status: 502, Err: media.ErrProtocol},
			serverErrorMessage,
		},
		{
			"connection refused",
			&media.BackendError{Kind: "movie", Op: "search", Err: fmt.Errorf("%w: dial tcp", media.ErrUnavailable)},
			connectivityErrorMessage,
		},
		{
			"client error falls through",
			&media.BackendError{Kind: "movie", Op: "search", Status: 404, Err: media.ErrProtocol},
			genericErrorMessage,
		},
		{
			"plain error",
			errors.New("boom"),
			genericErrorMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
