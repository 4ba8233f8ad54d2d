package tui

import (
	"errors"
	"fmt"
	"io"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/tui/delegate"
	"github.com/blackwell-systems/booklog/internal/tui/picker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
)

// ErrNoBooks is returned when a picker or browser has nothing to show.
var ErrNoBooks = errors.New("no books to display")

// renderBookPickerItem renders a two-line picker row: title, then author
// with the rating.
func renderBookPickerItem(w io.Writer, m list.Model, index int, item list.Item) {
	bookItem, ok := item.(BookItem)
	if !ok {
		return
	}
	b := bookItem.Book

	width := m.Width() - 4
	if width < 20 {
		width = 20
	}
	title := xansi.Truncate(b.Title, width, "…")
	meta := xansi.Truncate(b.Author, width-starsWidth-1, "…") + " " + StyleStars.Render(b.Stars())

	if index == m.Index() {
		_, _ = fmt.Fprintf(w, "%s\n  %s", StyleHighlight.Render("› "+title), meta)
	} else {
		_, _ = fmt.Fprintf(w, "  %s\n  %s", StyleNormal.Render(title), StyleHelp.Render(meta))
	}
}

type bookPickerModel struct {
	base     *picker.Base
	selected *catalog.Book
}

func (m bookPickerModel) Init() tea.Cmd {
	return nil
}

func (m bookPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.base.Update(msg)

	if m.base.IsQuitting() && m.base.Error() == nil {
		if item, ok := m.base.SelectedItem().(BookItem); ok {
			b := item.Book
			m.selected = &b
		}
	}

	return m, cmd
}

func (m bookPickerModel) View() string {
	return m.base.View() + "\n" + RenderFooterBar([]ShortcutEntry{
		{Key: "", Label: "↑/↓ move"},
		{Key: "", Label: "/ filter"},
		{Key: "", Label: "enter select"},
		{Key: "", Label: "esc cancel"},
	}, "")
}

// RunBookPicker launches an interactive book picker over books, in the
// order given. Returns the chosen book or picker.ErrCanceled.
func RunBookPicker(books []catalog.Book, title string) (catalog.Book, error) {
	if len(books) == 0 {
		return catalog.Book{}, ErrNoBooks
	}

	d := delegate.NewWithHeight(renderBookPickerItem, 2)
	l := list.New(bookItems(books), d, 0, 0)
	if title != "" {
		l.Title = title
	} else {
		l.Title = "Select a book"
	}
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = StyleHeader
	l.Styles.PaginationStyle = StyleHelp
	l.Styles.HelpStyle = StyleHelp

	keys := NewPickerKeys()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Select}
	}

	base := picker.New(picker.Config{
		List:         l,
		QuitKeys:     keys.Quit,
		SelectKeys:   keys.Select,
		ShowBorder:   true,
		BorderStyle:  StyleBorder,
		FooterHeight: 1,
		OnSelect: func(list.Item) bool {
			return true
		},
	})

	p := tea.NewProgram(bookPickerModel{base: base}, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return catalog.Book{}, fmt.Errorf("running TUI: %w", err)
	}

	fm, ok := finalModel.(bookPickerModel)
	if !ok {
		return catalog.Book{}, picker.ErrCanceled
	}
	if fm.selected != nil {
		return *fm.selected, nil
	}
	if fm.base.Error() != nil {
		return catalog.Book{}, fm.base.Error()
	}
	return catalog.Book{}, picker.ErrCanceled
}
