// Package arr holds the plumbing shared by the *arr family of backends:
// authenticated REST client construction, error classification and the
// connect-time pinning of configured defaults.
package arr

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fetcharr/fetcharr/pkg/media"
)

// RootFolder is a storage destination exposed by the upstream server.
type RootFolder struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
}

// QualityProfile is a named quality configuration on the upstream server.
type QualityProfile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Image is carried through from lookup results to add requests untouched.
type Image struct {
	CoverType string `json:"coverType,omitempty"`
	URL       string `json:"url,omitempty"`
	RemoteURL string `json:"remoteUrl,omitempty"`
}

// NewClient builds the authenticated REST client. Timeouts are fixed here;
// the flow adds no timeout of its own on backend calls.
func NewClient(baseURL, apiKey string) *resty.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	return resty.NewWithClient(&http.Client{
		Timeout:   30 * time.Second,
		Transport: &http.Transport{DialContext: dialer.DialContext},
	}).
		SetBaseURL(baseURL).
		SetHeader("X-Api-Key", apiKey)
}

// CheckResponse classifies the outcome of a REST call into the backend
// error taxonomy. A nil return means the call succeeded.
func CheckResponse(kind, op string, resp *resty.Response, err error) error {
	if err != nil {
		return &media.BackendError{
			Kind: kind, Op: op,
			Err: fmt.Errorf("%w: %w", media.ErrUnavailable, err),
		}
	}
	if resp.IsError() {
		sentinel := media.ErrProtocol
		if op == "request" {
			sentinel = media.ErrRequestFailed
		}
		return &media.BackendError{
			Kind: kind, Op: op, Status: resp.StatusCode(),
			Err: fmt.Errorf("%w: %s", sentinel, http.StatusText(resp.StatusCode())),
		}
	}
	return nil
}

// Pin reduces items to the single entry whose name matches want. Used when
// the administrator configured a fixed value for an enumerable field; a
// value that does not exist upstream fails startup with the alternatives.
func Pin[T any](items []T, name func(T) string, want, field string) ([]T, error) {
	for _, item := range items {
		if name(item) == want {
			return []T{item}, nil
		}
	}
	available := make([]string, len(items))
	for i, item := range items {
		available[i] = name(item)
	}
	return nil, fmt.Errorf("%s %q not found, available: [%s]",
		field, want, strings.Join(available, ", "))
}

// Restrict filters values down to the allowed subset, preserving order.
// An empty allow list means no restriction.
func Restrict(values, allowed []string) []string {
	if len(allowed) == 0 {
		return values
	}
	keep := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		keep[a] = true
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if keep[v] {
			out = append(out, v)
		}
	}
	return out
}
