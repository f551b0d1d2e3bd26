package discord

import (
	"testing"

	"github.com/fetcharr/fetcharr/pkg/session"
)

func TestCustomIDRoundTrip(t *testing.T) {
	const sid = "4f7c2d8e-1234-4abc-9def-000000000000"

	tests := []struct {
		name string
		id   string
		want Ref
	}{
		{"result", resultID(sid), Ref{Scope: session.ScopeResult, Session: sid}},
		{"submit", submitID(sid), Ref{Scope: session.ScopeSubmit, Session: sid}},
		{"detail", detailID(sid, "Quality Profile"), Ref{Scope: session.ScopeDetail, Session: sid, Field: "Quality Profile"}},
		// Field titles may themselves contain the separator.
		{"detail with colon", detailID(sid, "Monitor: Season"), Ref{Scope: session.ScopeDetail, Session: sid, Field: "Monitor: Season"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCustomID(tt.id)
			if err != nil {
				t.Fatalf("parseCustomID(%q): %v", tt.id, err)
			}
			if got != tt.want {
				t.Errorf("parseCustomID(%q) = %+v, want %+v", tt.id, got, tt.want)
			}
		})
	}
}

func TestParseCustomIDRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"result",
		"result:",
		"detail:abc",
		"detail:abc:",
		"ticket:abc",
		"other-bots-button",
	}
	for _, id := range bad {
		if _, err := parseCustomID(id); err == nil {
			t.Errorf("parseCustomID(%q) should fail", id)
		}
	}
}
