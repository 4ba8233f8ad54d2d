package catalog

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date form used for DateRead.
const DateLayout = "2006-01-02"

// Book is one entry in the reading log.
type Book struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Author    string    `json:"author" yaml:"author"`
	ISBN      string    `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	Rating    int       `json:"rating" yaml:"rating"`
	Notes     string    `json:"notes" yaml:"notes"`
	DateRead  string    `json:"dateRead" yaml:"date_read"`
	CoverURL  string    `json:"coverUrl,omitempty" yaml:"cover_url,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`
}

// Fields is the user-editable subset of a Book.
type Fields struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	ISBN     string `json:"isbn,omitempty"`
	Rating   int    `json:"rating"`
	Notes    string `json:"notes"`
	DateRead string `json:"dateRead"`
}

// Fields returns the editable values of b.
func (b Book) Fields() Fields {
	return Fields{
		Title:    b.Title,
		Author:   b.Author,
		ISBN:     b.ISBN,
		Rating:   b.Rating,
		Notes:    b.Notes,
		DateRead: b.DateRead,
	}
}

// apply copies f onto b. System-derived fields are left alone.
func (b *Book) apply(f Fields) {
	b.Title = f.Title
	b.Author = f.Author
	b.ISBN = f.ISBN
	b.Rating = f.Rating
	b.Notes = f.Notes
	b.DateRead = f.DateRead
}

// Paragraphs splits the notes on line breaks, one entry per paragraph.
func (b Book) Paragraphs() []string {
	notes := strings.ReplaceAll(b.Notes, "\r\n", "\n")
	return strings.Split(notes, "\n")
}

// Stars renders the rating as five filled or hollow stars.
func (b Book) Stars() string {
	n := b.Rating
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

// ParseDate parses a YYYY-MM-DD calendar date. Out-of-range days such as
// 2024-02-30 are rejected.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// FormatDate renders a stored date the long way ("January 2, 2006"),
// falling back to the raw value when it does not parse.
func FormatDate(s string) string {
	t, err := ParseDate(s)
	if err != nil {
		return s
	}
	return t.Format("January 2, 2006")
}
