package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// BookItem is a book as a list row.
type BookItem struct {
	Book catalog.Book
}

// FilterValue returns the text matched by the list filter: title and author,
// the same fields the repository search looks at.
func (b BookItem) FilterValue() string {
	return b.Book.Title + " " + b.Book.Author
}

// bookItems wraps books as list items, preserving order.
func bookItems(books []catalog.Book) []list.Item {
	items := make([]list.Item, len(books))
	for i, b := range books {
		items[i] = BookItem{Book: b}
	}
	return items
}

// Column width constraints
const (
	minTitleWidth  = 12
	maxTitleWidth  = 48
	minAuthorWidth = 8
	maxAuthorWidth = 28
	starsWidth     = 5
	dateWidth      = 10
	columnGap      = 2
)

// computeColumnWidths splits the row between title and author once the
// fixed-width rating and date columns are reserved.
func computeColumnWidths(totalWidth int) (titleW, authorW int) {
	prefix := 2
	gaps := columnGap * 3
	usable := totalWidth - prefix - gaps - starsWidth - dateWidth
	if usable < minTitleWidth+minAuthorWidth {
		return minTitleWidth, minAuthorWidth
	}

	titleW = usable * 60 / 100
	if titleW > maxTitleWidth {
		titleW = maxTitleWidth
	}
	authorW = usable - titleW
	if authorW > maxAuthorWidth {
		authorW = maxAuthorWidth
	}
	if titleW < minTitleWidth {
		titleW = minTitleWidth
	}
	if authorW < minAuthorWidth {
		authorW = minAuthorWidth
	}
	return titleW, authorW
}

// padOrTruncate fits s to exactly width cells, truncating with "…".
func padOrTruncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = xansi.Truncate(s, width, "…")
	if n := xansi.StringWidth(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}

// renderBookItem renders a book in the browser list with fixed-width columns.
func renderBookItem(w io.Writer, m list.Model, index int, item list.Item) {
	bookItem, ok := item.(BookItem)
	if !ok {
		return
	}
	b := bookItem.Book

	listWidth := m.Width()
	if listWidth <= 0 {
		listWidth = 80
	}
	titleW, authorW := computeColumnWidths(listWidth)
	gap := strings.Repeat(" ", columnGap)

	titleCol := padOrTruncate(b.Title, titleW)
	authorCol := padOrTruncate(b.Author, authorW)
	starsCol := b.Stars()
	dateCol := padOrTruncate(b.DateRead, dateWidth)

	var line string
	if index == m.Index() {
		prefix := lipgloss.NewStyle().Foreground(ColorOrange).Render("›") + " "
		line = prefix +
			StyleHighlight.Render(titleCol) + gap +
			lipgloss.NewStyle().Foreground(ColorOrange).Faint(true).Render(authorCol) + gap +
			StyleStars.Render(starsCol) + gap +
			lipgloss.NewStyle().Foreground(ColorTealLight).Render(dateCol)
	} else {
		line = "  " +
			StyleNormal.Render(titleCol) + gap +
			StyleHelp.Render(authorCol) + gap +
			StyleStars.Render(starsCol) + gap +
			StyleDate.Render(dateCol)
	}
	_, _ = fmt.Fprint(w, line)
}
