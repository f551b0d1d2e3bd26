// Package details implements the detail-collection protocol: reducing a
// backend's declared configurable fields to a fully resolved selection, one
// user choice at a time.
package details

import (
	"errors"
	"fmt"

	"github.com/fetcharr/fetcharr/pkg/media"
)

var (
	// ErrUnknownField means a selection addressed a field title that does
	// not exist in the collection. User-input noise, not a fault.
	ErrUnknownField = errors.New("unknown detail field")
	// ErrOptionOutOfRange means a selection index fell outside the field's
	// remaining options. User-input noise, not a fault.
	ErrOptionOutOfRange = errors.New("option index out of range")
)

// Collection holds one session's request details and remembers which fields
// were user-selectable when first enumerated. That set is fixed before any
// reduction happens, so a field the user has already resolved still renders
// as a completed choice rather than disappearing.
type Collection struct {
	fields     []media.RequestDetail
	selectable map[string]bool // titles with >1 option at creation
}

// New builds a collection from a backend's enumerated details. A detail
// with zero options violates the contract and is rejected outright.
func New(fields []media.RequestDetail) (*Collection, error) {
	selectable := make(map[string]bool, len(fields))
	for _, f := range fields {
		if len(f.Options) == 0 {
			return nil, fmt.Errorf("detail %q has no options", f.Title)
		}
		if len(f.Options) > 1 {
			selectable[f.Title] = true
		}
	}
	return &Collection{fields: fields, selectable: selectable}, nil
}

// Select reduces the addressed field to exactly the chosen option. The
// reduction is destructive and irreversible within a session.
func (c *Collection) Select(fieldTitle string, optionIndex int) error {
	for i := range c.fields {
		if c.fields[i].Title != fieldTitle {
			continue
		}
		opts := c.fields[i].Options
		if optionIndex < 0 || optionIndex >= len(opts) {
			return ErrOptionOutOfRange
		}
		c.fields[i].Options = []media.DropdownOption{opts[optionIndex]}
		return nil
	}
	return ErrUnknownField
}

// Resolved reports whether every field has exactly one option, which is the
// submit-enable condition.
func (c *Collection) Resolved() bool {
	for _, f := range c.fields {
		if !f.Resolved() {
			return false
		}
	}
	return true
}

// Fields returns the current detail set, handed to the backend on submit.
func (c *Collection) Fields() []media.RequestDetail { return c.fields }

// Field is one renderable entry of the collection view.
type Field struct {
	Title   string
	Type    media.FieldType
	Options []media.DropdownOption
	// Chosen is set once the user has picked; Options then holds only it.
	Chosen bool
}

// View projects the collection for rendering. Only fields that were
// user-selectable at creation appear; pure configuration defaults stay out
// of the chooser UI entirely. Calling View repeatedly with no intervening
// Select yields identical output.
type View struct {
	Fields []Field
	// SubmitEnabled is true iff every field (shown or not) is resolved.
	SubmitEnabled bool
}

// View builds the current projection of the collection.
func (c *Collection) View() View {
	v := View{SubmitEnabled: c.Resolved()}
	for _, f := range c.fields {
		if !c.selectable[f.Title] {
			continue
		}
		opts := make([]media.DropdownOption, len(f.Options))
		copy(opts, f.Options)
		v.Fields = append(v.Fields, Field{
			Title:   f.Title,
			Type:    f.Type,
			Options: opts,
			Chosen:  f.Resolved(),
		})
	}
	return v
}
