// Package store defines the Record Store Adapter: a generic document store
// with insert, point update, point delete and equality queries. Backends live
// in sub-packages (pgstore, fsstore) and the in-memory Memory store in this
// package serves development and tests.
package store

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("document not found")

// Collection names used by the portal.
const (
	Appointments = "appointments"
	Medications  = "medications"
	Users        = "users"
)

// Document is an opaque set of fields. Values are strings, bools, float64s
// or nested maps and slices as produced by JSON decoding.
type Document map[string]any

// Record is a document together with its store-assigned identifier.
type Record struct {
	ID   string
	Data Document
}

// String returns the field as a string, or "" when absent or not a string.
func (d Document) String(field string) string {
	s, _ := d[field].(string)
	return s
}

// Bool returns the field as a bool and whether it was present as one.
func (d Document) Bool(field string) (bool, bool) {
	b, ok := d[field].(bool)
	return b, ok
}

// Has reports whether the field is present.
func (d Document) Has(field string) bool {
	_, ok := d[field]
	return ok
}

type valueOp int

const (
	opKeep valueOp = iota
	opSet
	opClear
)

// Value is one field instruction inside a Patch: Keep leaves the stored field
// untouched, SetTo writes a value (including the empty string) and Clear
// removes the field from the document.
type Value struct {
	op valueOp
	v  any
}

func Keep() Value { return Value{op: opKeep} }
func SetTo(v any) Value { return Value{op: opSet, v: v} }
func Clear() Value { return Value{op: opClear} }

func (v Value) String() string {
	switch v.op {
	case opSet:
		return fmt.Sprintf("SetTo(%v)", v.v)
	case opClear:
		return "Clear"
	default:
		return "Keep"
	}
}

// Patch maps field names to instructions.
type Patch map[string]Value

// Split separates a patch into the fields to write and the fields to remove.
func (p Patch) Split() (set Document, cleared []string) {
	set = Document{}
	for field, v := range p {
		switch v.op {
		case opSet:
			set[field] = v.v
		case opClear:
			cleared = append(cleared, field)
		}
	}
	return set, cleared
}

// WriteMode selects how Update combines the patch with the stored document.
type WriteMode int

const (
	// Merge applies SetTo and Clear field by field and leaves other fields
	// as they are.
	Merge WriteMode = iota
	// Replace makes the stored document exactly the SetTo fields.
	Replace
)

// Filter matches documents whose field equals one of Values.
type Filter struct {
	Field  string
	Values []any
}

func Eq(field string, v any) Filter { return Filter{Field: field, Values: []any{v}} }
func In(field string, vs ...any) Filter { return Filter{Field: field, Values: vs} }

// Matches reports whether doc satisfies the filter.
func (f Filter) Matches(doc Document) bool {
	got, ok := doc[f.Field]
	if !ok {
		return false
	}
	for _, want := range f.Values {
		if got == want {
			return true
		}
	}
	return false
}

// MaxInValues is the largest In filter every backend accepts (Firestore's
// limit).
const MaxInValues = 30

// Store is the Record Store Adapter consumed by the domain services.
type Store interface {
	// Insert stores doc under a new identifier and returns it.
	Insert(ctx context.Context, collection string, doc Document) (string, error)
	// GetByID returns ErrNotFound when the document does not exist.
	GetByID(ctx context.Context, collection, id string) (Record, error)
	// Update upserts: a missing document is created from the patch.
	Update(ctx context.Context, collection, id string, patch Patch, mode WriteMode) error
	// Remove deletes the document; removing an absent id is not an error.
	Remove(ctx context.Context, collection, id string) error
	// Query returns the documents matching every filter. Order is unspecified.
	Query(ctx context.Context, collection string, filters ...Filter) ([]Record, error)
}

// Pinger is implemented by backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
