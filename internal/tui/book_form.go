package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/cover"
	"github.com/blackwell-systems/booklog/internal/form"
	"github.com/blackwell-systems/booklog/internal/tui/picker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// BookFormOptions configures RunBookForm.
type BookFormOptions struct {
	Heading  string // "Add Book" or "Edit Book"
	Subtitle string // shown under the heading, e.g. the book ID
	Initial  form.Input
	Covers   cover.Resolver // nil disables the cover preview
}

const (
	fieldTitle = iota
	fieldAuthor
	fieldISBN
	fieldRating
	fieldNotes
	fieldDateRead
	numFields
)

var fieldLabels = [numFields]string{"Title", "Author", "ISBN", "Rating", "Notes", "Read on"}

// fieldKeys are the names form.Error reports fields by.
var fieldKeys = [numFields]string{"title", "author", "isbn", "rating", "notes", "dateRead"}

type previewState int

const (
	previewIdle previewState = iota
	previewLoading
	previewFound
	previewNone
)

// coverPreviewMsg carries the result of one preview lookup.
type coverPreviewMsg struct {
	token uint64
	isbn  string
	url   string
	ok    bool
}

type bookFormModel struct {
	opts    BookFormOptions
	keys    FormKeys
	inputs  [numFields]textinput.Model // fieldNotes slot unused
	notes   textarea.Model
	focused int

	covers      cover.Resolver
	tracker     *cover.Tracker
	previewISBN string
	preview     previewState
	previewURL  string

	errs       *form.Error
	result     *catalog.Fields
	canceled   bool
	confirming bool
	activeCmd  string
	width      int
}

func newBookForm(opts BookFormOptions) bookFormModel {
	m := bookFormModel{
		opts:    opts,
		keys:    NewFormKeys(),
		covers:  opts.Covers,
		tracker: &cover.Tracker{},
	}

	const fieldWidth = 42
	newInput := func(placeholder, value string, limit, width int) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.SetValue(value)
		ti.CharLimit = limit
		ti.Width = width
		ti.Prompt = "│ "
		return ti
	}

	in := opts.Initial
	m.inputs[fieldTitle] = newInput("Book title", in.Title, 200, fieldWidth)
	m.inputs[fieldAuthor] = newInput("Author name", in.Author, 120, fieldWidth)
	m.inputs[fieldISBN] = newInput("optional, e.g. 9780441013593", in.ISBN, 20, 24)
	m.inputs[fieldRating] = newInput("1-5", in.Rating, 1, 4)
	m.inputs[fieldDateRead] = newInput(catalog.DateLayout, in.DateRead, 10, 12)

	m.notes = textarea.New()
	m.notes.Placeholder = "What did you think?"
	m.notes.SetValue(in.Notes)
	m.notes.ShowLineNumbers = false
	m.notes.CharLimit = 0
	m.notes.SetWidth(fieldWidth + 2)
	m.notes.SetHeight(5)

	m.inputs[fieldTitle].Focus()

	m.previewISBN = strings.TrimSpace(in.ISBN)
	if m.covers != nil && cover.CanPreview(m.previewISBN) {
		m.preview = previewLoading
	}
	return m
}

func (m bookFormModel) Init() tea.Cmd {
	if m.preview == previewLoading {
		return tea.Batch(textinput.Blink, m.lookupCover(m.previewISBN))
	}
	return textinput.Blink
}

// lookupCover starts a preview lookup, superseding any in flight.
func (m bookFormModel) lookupCover(isbn string) tea.Cmd {
	token, ctx := m.tracker.Begin(context.Background())
	covers := m.covers
	return func() tea.Msg {
		url, ok := covers.Resolve(ctx, isbn)
		return coverPreviewMsg{token: token, isbn: isbn, url: url, ok: ok}
	}
}

// syncPreview reacts to an ISBN edit: long enough ISBNs are looked up,
// anything shorter clears the preview and abandons the pending lookup.
func (m *bookFormModel) syncPreview() tea.Cmd {
	isbn := strings.TrimSpace(m.inputs[fieldISBN].Value())
	if isbn == m.previewISBN || m.covers == nil {
		return nil
	}
	m.previewISBN = isbn
	m.previewURL = ""
	if !cover.CanPreview(isbn) {
		m.tracker.Stop()
		m.preview = previewIdle
		return nil
	}
	m.preview = previewLoading
	return m.lookupCover(isbn)
}

func (m bookFormModel) input() form.Input {
	return form.Input{
		Title:    m.inputs[fieldTitle].Value(),
		Author:   m.inputs[fieldAuthor].Value(),
		ISBN:     m.inputs[fieldISBN].Value(),
		Rating:   m.inputs[fieldRating].Value(),
		Notes:    m.notes.Value(),
		DateRead: m.inputs[fieldDateRead].Value(),
	}
}

// submit validates the fields; failures stay on the form with messages
// next to each field, success moves on to the confirmation prompt.
func (m *bookFormModel) submit() tea.Cmd {
	_, err := form.Validate(m.input())
	var ferr *form.Error
	if errors.As(err, &ferr) {
		m.errs = ferr
		for i, k := range fieldKeys {
			if ferr.For(k) != "" {
				return m.focus(i)
			}
		}
		return nil
	}
	m.errs = nil
	m.confirming = true
	return nil
}

func (m *bookFormModel) confirm() tea.Cmd {
	fields, err := form.Validate(m.input())
	if err != nil {
		m.confirming = false
		return nil
	}
	m.result = &fields
	m.tracker.Stop()
	return tea.Quit
}

func (m *bookFormModel) focus(i int) tea.Cmd {
	m.focused = (i + numFields) % numFields
	m.notes.Blur()
	for f := range m.inputs {
		if f != fieldNotes {
			m.inputs[f].Blur()
		}
	}
	if m.focused == fieldNotes {
		return m.notes.Focus()
	}
	return m.inputs[m.focused].Focus()
}

func (m bookFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ClearActiveCmdMsg:
		m.activeCmd = ""
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case coverPreviewMsg:
		if !m.tracker.Current(msg.token) {
			return m, nil
		}
		if msg.ok {
			m.preview = previewFound
			m.previewURL = msg.url
		} else {
			m.preview = previewNone
			m.previewURL = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.confirming {
			switch msg.String() {
			case "enter", "y", "Y":
				return m, m.confirm()
			case "n", "N", "esc":
				m.confirming = false
				return m, nil
			case "ctrl+c":
				m.canceled = true
				m.tracker.Stop()
				return m, tea.Quit
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.canceled = true
			m.tracker.Stop()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Submit):
			m.activeCmd = "ctrl+s"
			return m, tea.Batch(m.submit(), HighlightCmd())

		case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Prev):
			next := m.focused + 1
			if key.Matches(msg, m.keys.Prev) {
				next = m.focused - 1
			}
			m.activeCmd = "tab"
			return m, tea.Batch(m.focus(next), HighlightCmd())

		case msg.Type == tea.KeyEnter && m.focused != fieldNotes:
			if m.focused == fieldDateRead {
				m.activeCmd = "ctrl+s"
				return m, tea.Batch(m.submit(), HighlightCmd())
			}
			return m, m.focus(m.focused + 1)
		}
	}

	var cmd tea.Cmd
	if m.focused == fieldNotes {
		m.notes, cmd = m.notes.Update(msg)
		return m, cmd
	}
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	if m.focused == fieldISBN {
		return m, tea.Batch(cmd, m.syncPreview())
	}
	return m, cmd
}

func (m bookFormModel) renderPreview(width int) string {
	switch m.preview {
	case previewLoading:
		return StyleHelp.Render("Looking up cover…")
	case previewFound:
		return StyleOK.Render("✓ Cover found") + "\n" +
			StyleHelp.Render(xansi.Truncate(m.previewURL, width, "…"))
	case previewNone:
		return StyleHelp.Render("No cover found for this ISBN")
	}
	if m.covers != nil && m.previewISBN != "" {
		return StyleHelp.Render(fmt.Sprintf("Cover preview needs at least %d characters", cover.PreviewMinLength))
	}
	return ""
}

func (m bookFormModel) View() string {
	outerStyle := lipgloss.NewStyle().Padding(1, 4)

	sepStyle := lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#444444"})
	formLabel := lipgloss.NewStyle().
		Foreground(ColorGray).
		Width(11).
		Align(lipgloss.Right).
		PaddingRight(1)
	formLabelActive := formLabel.
		Foreground(ColorYellow).
		Bold(true)
	errIndent := lipgloss.NewStyle().PaddingLeft(11)

	const w = 58
	sep := sepStyle.Render(strings.Repeat("─", w))

	var b strings.Builder

	heading := m.opts.Heading
	if heading == "" {
		heading = "Book"
	}
	b.WriteString(StyleHeader.Render(heading))
	b.WriteString("\n")
	if m.opts.Subtitle != "" {
		b.WriteString(StyleHelp.Render(m.opts.Subtitle))
		b.WriteString("\n")
	}
	b.WriteString(sep)
	b.WriteString("\n\n")

	for i, label := range fieldLabels {
		if i == m.focused && !m.confirming {
			b.WriteString(formLabelActive.Render("› " + label))
		} else {
			b.WriteString(formLabel.Render(label))
		}
		if i == fieldNotes {
			b.WriteString("\n")
			b.WriteString(errIndent.Render(m.notes.View()))
		} else {
			b.WriteString(m.inputs[i].View())
		}
		b.WriteString("\n")

		if i == fieldISBN {
			if p := m.renderPreview(w - 11); p != "" {
				b.WriteString(errIndent.Render(p))
				b.WriteString("\n")
			}
		}
		if m.errs != nil {
			if msg := m.errs.For(fieldKeys[i]); msg != "" {
				b.WriteString(errIndent.Render(StyleError.Render(msg)))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(sep)
	b.WriteString("\n")

	if m.confirming {
		b.WriteString(StyleHighlight.Render("  Save this book? "))
		b.WriteString(StyleHelp.Render("Y/n"))
	} else {
		b.WriteString(RenderFooterBar([]ShortcutEntry{
			{Key: "tab", Label: "tab/shift+tab navigate"},
			{Key: "ctrl+s", Label: "ctrl+s save"},
			{Key: "", Label: "esc cancel"},
		}, m.activeCmd))
	}
	b.WriteString("\n")

	innerPadding := lipgloss.NewStyle().Padding(0, 2, 0, 1)
	return outerStyle.Render(StyleBorder.Render(innerPadding.Render(b.String())))
}

// RunBookForm shows the add/edit form and returns validated fields.
// Leaving the form returns picker.ErrCanceled and abandons any pending
// cover preview.
func RunBookForm(opts BookFormOptions) (catalog.Fields, error) {
	m := newBookForm(opts)
	defer m.tracker.Stop()

	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return catalog.Fields{}, fmt.Errorf("running form: %w", err)
	}

	fm, ok := finalModel.(bookFormModel)
	if !ok {
		return catalog.Fields{}, fmt.Errorf("unexpected model type")
	}
	if fm.canceled || fm.result == nil {
		return catalog.Fields{}, picker.ErrCanceled
	}
	return *fm.result, nil
}
