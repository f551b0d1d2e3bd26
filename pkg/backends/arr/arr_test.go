package arr

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/fetcharr/fetcharr/pkg/media"
)

func TestPin(t *testing.T) {
	profiles := []QualityProfile{
		{ID: 1, Name: "SD"},
		{ID: 2, Name: "HD-1080p"},
		{ID: 3, Name: "Ultra-HD"},
	}
	name := func(p QualityProfile) string { return p.Name }

	got, err := Pin(profiles, name, "HD-1080p", "quality_profile")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected the single matching profile, got %+v", got)
	}
}

func TestPinNotFound(t *testing.T) {
	folders := []RootFolder{{ID: 1, Path: "/movies"}, {ID: 2, Path: "/kids"}}
	_, err := Pin(folders, func(f RootFolder) string { return f.Path }, "/anime", "rootfolder")
	if err == nil {
		t.Fatal("expected an error for an unknown pin target")
	}
	// The operator should see what they could have written instead.
	for _, want := range []string{"/anime", "/movies", "/kids"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestRestrict(t *testing.T) {
	values := []string{"all", "future", "missing", "none"}

	tests := []struct {
		name    string
		allowed []string
		want    []string
	}{
		{"no restriction", nil, values},
		{"subset keeps order", []string{"none", "future"}, []string{"future", "none"}},
		{"unknown entries ignored", []string{"bogus", "all"}, []string{"all"}},
		{"nothing matches", []string{"bogus"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Restrict(values, tt.allowed); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Restrict(%v) = %v, want %v", tt.allowed, got, tt.want)
			}
		})
	}
}

func TestCheckResponseClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/denied":
			w.WriteHeader(http.StatusUnauthorized)
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()
	client := NewClient(srv.URL, "key")

	t.Run("success", func(t *testing.T) {
		resp, err := client.R().Get("/ok")
		if cerr := CheckResponse("movie", "search", resp, err); cerr != nil {
			t.Fatalf("expected nil, got %v", cerr)
		}
	})

	t.Run("http error carries status", func(t *testing.T) {
		resp, err := client.R().Get("/denied")
		cerr := CheckResponse("movie", "search", resp, err)
		var be *media.BackendError
		if !errors.As(cerr, &be) {
			t.Fatalf("expected BackendError, got %v", cerr)
		}
		if be.Status != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", be.Status)
		}
		if !errors.Is(cerr, media.ErrProtocol) {
			t.Error("search failures wrap ErrProtocol")
		}
	})

	t.Run("request op wraps request sentinel", func(t *testing.T) {
		resp, err := client.R().Get("/broken")
		cerr := CheckResponse("series", "request", resp, err)
		if !errors.Is(cerr, media.ErrRequestFailed) {
			t.Errorf("request failures wrap ErrRequestFailed, got %v", cerr)
		}
	})

	t.Run("transport error wraps unavailable", func(t *testing.T) {
		dead := NewClient("http://127.0.0.1:1", "key")
		resp, err := dead.R().Get("/ok")
		cerr := CheckResponse("movie", "search", resp, err)
		if !errors.Is(cerr, media.ErrUnavailable) {
			t.Errorf("transport failures wrap ErrUnavailable, got %v", cerr)
		}
	})
}

func TestNewClientSendsAPIKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "sekret").R().Get("/api/v3/health"); err != nil {
		t.Fatal(err)
	}
	if gotKey != "sekret" {
		t.Errorf("X-Api-Key = %q, want sekret", gotKey)
	}
}
