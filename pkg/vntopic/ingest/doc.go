package ingest

import (
	"errors"
	"strings"
	"time"
)

// Field is an optional attribute. A zero Field is missing.
type Field[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value.
func Some[T any](v T) Field[T] {
	return Field[T]{value: v, ok: true}
}

// None returns a missing value.
func None[T any]() Field[T] {
	return Field[T]{}
}

// Get returns the value and whether it is present.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.ok
}

// Present reports whether the value was supplied.
func (f Field[T]) Present() bool {
	return f.ok
}

// OrElse returns the value, or def when missing.
func (f Field[T]) OrElse(def T) T {
	if !f.ok {
		return def
	}
	return f.value
}

// Text builds a string field, treating blank strings as missing.
func Text(s string) Field[string] {
	if strings.TrimSpace(s) == "" {
		return None[string]()
	}
	return Some(s)
}

// Document is one raw corpus row. Row is its position in the input.
type Document struct {
	Row         int
	Text        Field[string]
	Title       Field[string]
	Description Field[string]
	Link        Field[string]
	Published   Field[time.Time]
	Extra       map[string]string // unknown columns, carried through unchanged
}

// Validate checks the fields a crawled article must carry.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Link.OrElse("")) == "" {
		return errors.New("doc link is required")
	}
	if strings.TrimSpace(d.Title.OrElse("")) == "" {
		return errors.New("doc title is required")
	}
	return nil
}
