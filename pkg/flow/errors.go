package flow

import (
	"context"
	"errors"
	"net"

	"github.com/fetcharr/fetcharr/pkg/media"
)

// Sanitized texts surfaced to the chat platform. Raw error detail,
// credentials and internal identifiers never reach the user.
const (
	timeoutErrorMessage      = "Request timed out. The backend server may be slow or unavailable."
	connectivityErrorMessage = "Could not connect to the backend server. Please try again later."
	authErrorMessage         = "Backend authentication error. Please contact your administrator."
	serverErrorMessage       = "The backend server encountered an error. Please try again later."
	genericErrorMessage      = "An error occurred while processing your request. Please try again or contact your administrator."
)

// UserMessage maps an internal error onto one of a small number of
// user-safe categories.
func UserMessage(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return timeoutErrorMessage
	}

	var be *media.BackendError
	if errors.As(err, &be) {
		switch {
		case be.Status == 401 || be.Status == 403:
			return authErrorMessage
		case be.Status >= 500:
			return serverErrorMessage
		}
	}

	if errors.Is(err, media.ErrUnavailable) {
		return connectivityErrorMessage
	}
	return genericErrorMessage
}
