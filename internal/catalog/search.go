package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Filter applies all non-empty criteria and returns matching books.
type Filter struct {
	Search    string // matches title or author
	MinRating int
}

// Apply returns the subset of books matching all non-empty filter fields.
// The result is a new slice; input order is preserved.
func (f Filter) Apply(books []Book) []Book {
	out := make([]Book, 0, len(books))
	for _, b := range books {
		if f.MinRating > 0 && b.Rating < f.MinRating {
			continue
		}
		if f.Search != "" && !Matches(b, f.Search) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// ParseMinRating reads a minimum-rating filter. Empty input means no
// filter; otherwise the value must be a whole number from 0 to 5.
func ParseMinRating(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 5 {
		return 0, fmt.Errorf("invalid min rating %q (want 0-5)", s)
	}
	return n, nil
}

// ByID returns the first book with the given ID, or nil.
func ByID(books []Book, id string) *Book {
	for i := range books {
		if books[i].ID == id {
			return &books[i]
		}
	}
	return nil
}

// Matches reports whether q occurs in the title or author, ignoring case.
// Both Repository.Search and View filtering go through here.
func Matches(b Book, q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(b.Title), q) {
		return true
	}
	return strings.Contains(strings.ToLower(b.Author), q)
}
