package details

import (
	"errors"
	"reflect"
	"testing"

	"github.com/fetcharr/fetcharr/pkg/media"
)

func field(title string, optionTitles ...string) media.RequestDetail {
	options := make([]media.DropdownOption, len(optionTitles))
	for i, t := range optionTitles {
		options[i] = media.DropdownOption{Title: t, ID: media.IntID(int64(i))}
	}
	return media.RequestDetail{Title: title, Options: options, Key: "test:" + title, Type: media.FieldDropdown}
}

func TestNewRejectsEmptyField(t *testing.T) {
	_, err := New([]media.RequestDetail{
		field("Quality Profile", "HD"),
		{Title: "Broken", Key: "test:broken"},
	})
	if err == nil {
		t.Fatal("expected error for a detail with zero options")
	}
}

// A field with several options at creation renders as a chooser; a field
// with one option is a configuration default and never does, even after
// other fields resolve.
func TestViewVisibility(t *testing.T) {
	c, err := New([]media.RequestDetail{
		field("Root Folder", "/movies"),
		field("Quality Profile", "SD", "HD", "4K"),
		field("Monitor", "Movie Only", "None"),
	})
	if err != nil {
		t.Fatal(err)
	}

	v := c.View()
	if len(v.Fields) != 2 {
		t.Fatalf("expected 2 visible fields, got %d", len(v.Fields))
	}
	for _, f := range v.Fields {
		if f.Title == "Root Folder" {
			t.Error("fixed default field should not be visible")
		}
	}
	if v.SubmitEnabled {
		t.Error("submit should be disabled with unresolved fields")
	}

	// Resolve everything; the selectable fields must remain visible as
	// completed choices, the default must stay hidden.
	if err := c.Select("Quality Profile", 1); err != nil {
		t.Fatal(err)
	}
	if err := c.Select("Monitor", 0); err != nil {
		t.Fatal(err)
	}

	v = c.View()
	if len(v.Fields) != 2 {
		t.Fatalf("expected 2 visible fields after resolution, got %d", len(v.Fields))
	}
	for _, f := range v.Fields {
		if !f.Chosen {
			t.Errorf("field %s should render as a completed choice", f.Title)
		}
		if len(f.Options) != 1 {
			t.Errorf("field %s should hold exactly the chosen option", f.Title)
		}
	}
	if !v.SubmitEnabled {
		t.Error("submit should be enabled once everything is resolved")
	}
}

func TestSelectReducesDestructively(t *testing.T) {
	c, _ := New([]media.RequestDetail{field("Quality Profile", "SD", "HD", "4K")})

	if err := c.Select("Quality Profile", 1); err != nil {
		t.Fatal(err)
	}
	fields := c.Fields()
	if len(fields[0].Options) != 1 || fields[0].Options[0].Title != "HD" {
		t.Fatalf("expected only the chosen option, got %+v", fields[0].Options)
	}

	// After reduction the only valid index is 0.
	if err := c.Select("Quality Profile", 1); !errors.Is(err, ErrOptionOutOfRange) {
		t.Errorf("expected ErrOptionOutOfRange, got %v", err)
	}
}

func TestSelectInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		index   int
		wantErr error
	}{
		{"unknown field", "Nope", 0, ErrUnknownField},
		{"negative index", "Monitor", -1, ErrOptionOutOfRange},
		{"index past end", "Monitor", 2, ErrOptionOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := New([]media.RequestDetail{field("Monitor", "All", "None")})
			if err := c.Select(tt.field, tt.index); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// Submit is enabled iff every field has exactly one option, for any
// resolution order.
func TestSubmitEnableAllOrders(t *testing.T) {
	orders := [][]string{
		{"A", "B", "C"},
		{"A", "C", "B"},
		{"B", "A", "C"},
		{"B", "C", "A"},
		{"C", "A", "B"},
		{"C", "B", "A"},
	}
	for _, order := range orders {
		c, _ := New([]media.RequestDetail{
			field("A", "1", "2"),
			field("B", "1", "2", "3"),
			field("C", "1", "2"),
		})
		for i, name := range order {
			if c.View().SubmitEnabled {
				t.Fatalf("order %v: submit enabled with %d fields pending", order, len(order)-i)
			}
			if err := c.Select(name, 0); err != nil {
				t.Fatal(err)
			}
		}
		if !c.View().SubmitEnabled {
			t.Errorf("order %v: submit should be enabled after all selections", order)
		}
	}
}

// Selecting one field leaves submit disabled while another still has
// multiple options.
func TestPartialResolutionKeepsSubmitDisabled(t *testing.T) {
	c, _ := New([]media.RequestDetail{
		field("Quality Profile", "SD", "HD", "4K"),
		field("Root Folder", "/a", "/b"),
	})

	if err := c.Select("Quality Profile", 1); err != nil {
		t.Fatal(err)
	}
	v := c.View()
	if v.SubmitEnabled {
		t.Error("submit must stay disabled while Root Folder has 2 options")
	}
	for _, f := range v.Fields {
		if f.Title == "Quality Profile" && !f.Chosen {
			t.Error("Quality Profile should be marked chosen")
		}
	}
}

// Re-rendering with no new input yields an identical view.
func TestViewIdempotent(t *testing.T) {
	c, _ := New([]media.RequestDetail{
		field("A", "1", "2"),
		field("B", "only"),
	})
	if err := c.Select("A", 0); err != nil {
		t.Fatal(err)
	}

	first := c.View()
	second := c.View()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("views differ without input:\n%+v\n%+v", first, second)
	}
}
