package catalog

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the ordering of a list view.
type SortKey string

const (
	SortByRating   SortKey = "rating"
	SortByDateRead SortKey = "dateRead"
	SortByTitle    SortKey = "title"
)

// DefaultSort is the ordering used when none is chosen.
const DefaultSort = SortByDateRead

// SortKeys lists the accepted keys in display order.
var SortKeys = []SortKey{SortByDateRead, SortByRating, SortByTitle}

// ParseSortKey maps user input to a SortKey. Empty input yields DefaultSort.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultSort, nil
	case "rating", "stars":
		return SortByRating, nil
	case "dateread", "date", "date-read", "date_read":
		return SortByDateRead, nil
	case "title":
		return SortByTitle, nil
	}
	return "", fmt.Errorf("unknown sort %q (want rating, dateRead or title)", s)
}

// Label is a human-readable name for the key.
func (k SortKey) Label() string {
	switch k {
	case SortByRating:
		return "Rating"
	case SortByTitle:
		return "Title"
	default:
		return "Date Read"
	}
}

// Next cycles through SortKeys.
func (k SortKey) Next() SortKey {
	i := slices.Index(SortKeys, k)
	return SortKeys[(i+1)%len(SortKeys)]
}

// View is an in-memory filter and sort over a snapshot of the collection.
// It never mutates the books it is given.
type View struct {
	Query     string
	MinRating int // 0 keeps every book
	Sort      SortKey
	Locale    language.Tag
}

// Apply filters books by Query and MinRating and returns a sorted copy.
func (v View) Apply(books []Book) []Book {
	out := Filter{Search: v.Query, MinRating: v.MinRating}.Apply(books)
	key := v.Sort
	if key == "" {
		key = DefaultSort
	}

	switch key {
	case SortByRating:
		slices.SortStableFunc(out, func(a, b Book) int {
			return b.Rating - a.Rating
		})
	case SortByTitle:
		c := collatorFor(v.Locale)
		slices.SortStableFunc(out, func(a, b Book) int {
			return c.CompareString(a.Title, b.Title)
		})
	default:
		slices.SortStableFunc(out, compareDateReadDesc)
	}
	return out
}

// compareDateReadDesc orders most recently read first; unparseable dates last.
func compareDateReadDesc(a, b Book) int {
	ta, errA := ParseDate(a.DateRead)
	tb, errB := ParseDate(b.DateRead)
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return 1
	case errB != nil:
		return -1
	}
	return tb.Compare(ta)
}

// collatorFor builds a collator for tag. Collators are not safe for
// concurrent use, so each Apply gets its own.
func collatorFor(tag language.Tag) *collate.Collator {
	if tag == language.Und {
		tag = language.English
	}
	return collate.New(tag)
}
