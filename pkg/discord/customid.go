package discord

import (
	"fmt"
	"strings"

	"github.com/fetcharr/fetcharr/pkg/session"
)

// Correlation ids route a component interaction back to exactly one field
// within exactly one session:
//
//	result:<session>
//	submit:<session>
//	detail:<session>:<field title>

// Ref is a parsed correlation id.
type Ref struct {
	Scope   string
	Session string
	// Field is the detail field title; set only for the detail scope.
	Field string
}

func resultID(sessionID string) string {
	return session.ScopeResult + ":" + sessionID
}

func submitID(sessionID string) string {
	return session.ScopeSubmit + ":" + sessionID
}

func detailID(sessionID, fieldTitle string) string {
	return session.ScopeDetail + ":" + sessionID + ":" + fieldTitle
}

func parseCustomID(id string) (Ref, error) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) < 2 || parts[1] == "" {
		return Ref{}, fmt.Errorf("malformed custom id %q", id)
	}
	ref := Ref{Scope: parts[0], Session: parts[1]}
	switch ref.Scope {
	case session.ScopeResult, session.ScopeSubmit:
		return ref, nil
	case session.ScopeDetail:
		if len(parts) != 3 || parts[2] == "" {
			return Ref{}, fmt.Errorf("detail custom id %q missing field", id)
		}
		ref.Field = parts[2]
		return ref, nil
	default:
		return Ref{}, fmt.Errorf("unknown custom id scope %q", parts[0])
	}
}
