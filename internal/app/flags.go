package app

import (
	"strings"

	"github.com/blackwell-systems/booklog/internal/form"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// bookFlags are the editable fields as command-line flags.
type bookFlags struct {
	title, author, isbn, rating, notes, dateRead string
}

func (f *bookFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "Book title")
	fs.StringVar(&f.author, "author", "", "Author")
	fs.StringVar(&f.isbn, "isbn", "", "ISBN, used to look up a cover")
	fs.StringVar(&f.rating, "rating", "", "Rating from 1 to 5")
	fs.StringVar(&f.notes, "notes", "", `Notes; "\n" starts a new paragraph`)
	fs.StringVar(&f.dateRead, "date-read", "", "Date finished, YYYY-MM-DD")
}

var bookFlagNames = []string{"title", "author", "isbn", "rating", "notes", "date-read"}

// anySet reports whether the user passed at least one field flag.
func (f *bookFlags) anySet(cmd *cobra.Command) bool {
	for _, name := range bookFlagNames {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// overlay copies every flag the user passed onto base. A flag given an
// empty value clears the field, so "--isbn ''" drops the ISBN.
func (f *bookFlags) overlay(fs *pflag.FlagSet, base form.Input) form.Input {
	in := f.input()
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("title", &base.Title, in.Title)
	set("author", &base.Author, in.Author)
	set("isbn", &base.ISBN, in.ISBN)
	set("rating", &base.Rating, in.Rating)
	set("notes", &base.Notes, in.Notes)
	set("date-read", &base.DateRead, in.DateRead)
	return base
}

func (f *bookFlags) input() form.Input {
	return form.Input{
		Title:    f.title,
		Author:   f.author,
		ISBN:     f.isbn,
		Rating:   f.rating,
		Notes:    strings.ReplaceAll(f.notes, `\n`, "\n"),
		DateRead: f.dateRead,
	}
}
