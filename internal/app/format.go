package app

import (
	"fmt"
	"io"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/fatih/color"
)

// shortID is the prefix of a book ID shown in listings. Commands accept
// any unambiguous prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// printBooks writes one line per book: id, stars, date read, title, author.
func printBooks(w io.Writer, books []catalog.Book) {
	for _, b := range books {
		fmt.Fprintf(w, "  %-8s  %s  %s  %s %s\n",
			color.WhiteString(shortID(b.ID)),
			color.YellowString(b.Stars()),
			color.CyanString("%-10s", b.DateRead),
			b.Title,
			color.HiBlackString("by "+b.Author),
		)
	}
}

// countLine is the collection summary, e.g. "3 books in your collection".
func countLine(n int) string {
	if n == 1 {
		return "1 book in your collection"
	}
	return fmt.Sprintf("%d books in your collection", n)
}

func writeJSON(w io.Writer, books []catalog.Book) error {
	data, err := catalog.MarshalIndent(books)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
