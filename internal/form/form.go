// Package form validates the editable fields of a book as they arrive
// from a CLI flag, a TUI field or a JSON request body.
package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blackwell-systems/booklog/internal/catalog"
)

// DefaultRating is the initial rating offered for a new book.
const DefaultRating = 3

// Input holds raw field values before validation.
type Input struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	ISBN     string `json:"isbn"`
	Rating   string `json:"rating"`
	Notes    string `json:"notes"`
	DateRead string `json:"dateRead"`
}

// UnmarshalJSON accepts the rating either as a JSON number or a string.
func (in *Input) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title    string          `json:"title"`
		Author   string          `json:"author"`
		ISBN     string          `json:"isbn"`
		Rating   json.RawMessage `json:"rating"`
		Notes    string          `json:"notes"`
		DateRead string          `json:"dateRead"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*in = Input{
		Title:    raw.Title,
		Author:   raw.Author,
		ISBN:     raw.ISBN,
		Notes:    raw.Notes,
		DateRead: raw.DateRead,
	}

	r := bytes.TrimSpace(raw.Rating)
	switch {
	case len(r) == 0 || string(r) == "null":
	case r[0] == '"':
		if err := json.Unmarshal(r, &in.Rating); err != nil {
			return fmt.Errorf("rating: %w", err)
		}
	default:
		in.Rating = string(r)
	}
	return nil
}

// FromBook returns the stored values of b as form input.
func FromBook(b catalog.Book) Input {
	return Input{
		Title:    b.Title,
		Author:   b.Author,
		ISBN:     b.ISBN,
		Rating:   strconv.Itoa(b.Rating),
		Notes:    b.Notes,
		DateRead: b.DateRead,
	}
}

// Defaults returns the initial form values. Editing starts from the
// stored book; a new book starts with a middling rating and today's date.
func Defaults(b *catalog.Book, now time.Time) Input {
	if b != nil {
		return FromBook(*b)
	}
	return Input{
		Rating:   strconv.Itoa(DefaultRating),
		DateRead: now.Format(catalog.DateLayout),
	}
}

// FieldError is a validation failure on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error lists every failing field.
type Error struct {
	Fields []FieldError `json:"errors"`
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "invalid book: " + strings.Join(msgs, "; ")
}

// For returns the message for field, or "".
func (e *Error) For(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}
