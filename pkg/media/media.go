// Package media defines the value objects and the capability contract that
// every request backend satisfies. The interaction flow only ever talks to a
// backend through Backend[T]; how a backend turns a resolved detail set into
// its native request shape is its own business.
package media

import "context"

// IDKind discriminates the primitive identity types a backend field may use
// to recover a chosen value unambiguously.
type IDKind int

const (
	IDNone IDKind = iota
	IDInt
	IDString
	IDBool
)

// SelectableID is a tagged union over the id types backends attach to
// dropdown options. Only the field matching Kind is meaningful.
type SelectableID struct {
	Kind IDKind
	Int  int64
	Str  string
	Bool bool
}

func IntID(v int64) SelectableID     { return SelectableID{Kind: IDInt, Int: v} }
func StringID(v string) SelectableID { return SelectableID{Kind: IDString, Str: v} }
func BoolID(v bool) SelectableID     { return SelectableID{Kind: IDBool, Bool: v} }

// DropdownOption is one selectable entry in a rendered menu.
type DropdownOption struct {
	// Title is the main line shown to the user.
	Title string
	// Description is an optional subtitle.
	Description string
	// ID carries the backend-specific identity of this option.
	ID SelectableID
}

// FieldType distinguishes how a request detail is presented.
type FieldType int

const (
	// FieldDropdown is an enum/list selection.
	FieldDropdown FieldType = iota
	// FieldBoolean is a yes/no selection.
	FieldBoolean
)

// RequestDetail is one configurable dimension of a request. A detail with
// exactly one option is resolved; selection is destructive, so the option
// count doubles as the "fully selected" predicate. A detail must never be
// constructed with zero options.
type RequestDetail struct {
	// Title is presented to the user and scopes continuation events.
	Title string
	// Options are the remaining choices, in backend order.
	Options []DropdownOption
	// Key is the backend-specific metadata key used to map the resolved
	// selection back onto the native request shape.
	Key string
	// Type of the field.
	Type FieldType
}

// Resolved reports whether the detail has been reduced to a single option.
func (d RequestDetail) Resolved() bool { return len(d.Options) == 1 }

// Clone deep-copies the detail so the flow can reduce options without
// touching the backend's connect-time template.
func (d RequestDetail) Clone() RequestDetail {
	out := d
	out.Options = make([]DropdownOption, len(d.Options))
	copy(out.Options, d.Options)
	return out
}

// CloneDetails deep-copies a detail template for one session's use.
func CloneDetails(details []RequestDetail) []RequestDetail {
	out := make([]RequestDetail, len(details))
	for i, d := range details {
		out[i] = d.Clone()
	}
	return out
}

// DisplayInfo is the presentation block for a selected item.
type DisplayInfo struct {
	Title        string
	Subtitle     string
	Description  string
	ThumbnailURL string
}

// SuccessMessage is the presentation block for a completed request.
type SuccessMessage struct {
	Title        string
	Description  string
	ThumbnailURL string
}

// Backend is the capability contract a media backend satisfies. T is the
// backend's own search-result type; the flow never inspects it directly.
//
// Backends are configured once at connect time, immutable afterwards, and
// safe for concurrent use by many sessions.
type Backend[T any] interface {
	// Kind names the media kind this backend serves ("movie", "series").
	Kind() string

	// Search returns matching items in upstream order.
	Search(ctx context.Context, term string) ([]T, error)

	// ResultOption projects an item into a dropdown entry.
	ResultOption(item T) DropdownOption

	// EarlyStop reports whether the selected item needs no further
	// processing. Must be computable from the item alone, no I/O.
	EarlyStop(item T) bool

	// DisplayInfo projects an item into its presentation block. Pure.
	DisplayInfo(item T) DisplayInfo

	// AdditionalDetails enumerates the configurable dimensions for a
	// request of this item. Usually served from connect-time state; a
	// backend may read upstream here only when the item already exists
	// there and the field set depends on its current upstream state.
	AdditionalDetails(ctx context.Context, item T) ([]RequestDetail, error)

	// Request performs the upstream mutation using the fully resolved
	// detail set. Idempotency is backend-specific.
	Request(ctx context.Context, details []RequestDetail, item T) error

	// SuccessMessage builds the completion block. Pure.
	SuccessMessage(details []RequestDetail, item T) SuccessMessage
}
