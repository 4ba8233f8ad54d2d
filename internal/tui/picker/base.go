// Package picker holds the list plumbing shared by the book picker and
// the browser.
package picker

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCanceled is recorded when the user quits without choosing.
var ErrCanceled = errors.New("canceled by user")

// SelectHandler is called when an item is selected.
// Return true to quit the picker, false to continue.
type SelectHandler func(selectedItem list.Item) bool

// KeyHandler is called for custom key handling before the defaults.
// Return handled=true to stop further processing of the key.
type KeyHandler func(msg tea.KeyMsg) (handled bool, cmd tea.Cmd)

// Config configures a base picker.
type Config struct {
	List list.Model

	QuitKeys   key.Binding
	SelectKeys key.Binding

	OnSelect   SelectHandler
	OnKeyPress KeyHandler

	// Reserved rows below the list, e.g. for a footer bar.
	FooterHeight int

	BorderStyle lipgloss.Style
	ShowBorder  bool
}

// Base provides common picker functionality.
// Embed a pointer to it in picker models.
type Base struct {
	config   Config
	list     list.Model
	quitting bool
	err      error
}

// New creates a new base picker.
func New(cfg Config) *Base {
	return &Base{
		config: cfg,
		list:   cfg.List,
	}
}

// List returns the underlying list model for direct access.
func (b *Base) List() *list.Model {
	return &b.list
}

// IsQuitting returns whether the picker is quitting.
func (b *Base) IsQuitting() bool {
	return b.quitting
}

// Error returns any error that occurred.
func (b *Base) Error() error {
	return b.err
}

// Filtering reports whether the user is typing a filter.
func (b *Base) Filtering() bool {
	return b.list.FilterState() == list.Filtering
}

// Update handles standard picker updates.
func (b *Base) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if b.Filtering() {
			break
		}

		if b.config.OnKeyPress != nil {
			if handled, cmd := b.config.OnKeyPress(msg); handled {
				return cmd
			}
		}

		switch {
		case key.Matches(msg, b.config.QuitKeys):
			b.err = ErrCanceled
			b.quitting = true
			return tea.Quit

		case key.Matches(msg, b.config.SelectKeys):
			if b.config.OnSelect == nil {
				break
			}
			if item := b.list.SelectedItem(); item != nil && b.config.OnSelect(item) {
				b.quitting = true
				return tea.Quit
			}
			return nil
		}

	case tea.WindowSizeMsg:
		w, h := msg.Width, msg.Height-b.config.FooterHeight
		if b.config.ShowBorder {
			fw, fh := b.config.BorderStyle.GetFrameSize()
			w, h = w-fw, h-fh
		}
		b.list.SetSize(w, h)
	}

	var cmd tea.Cmd
	b.list, cmd = b.list.Update(msg)
	return cmd
}

// View renders the picker.
func (b *Base) View() string {
	if b.quitting {
		return ""
	}
	view := b.list.View()
	if b.config.ShowBorder {
		return b.config.BorderStyle.Render(view)
	}
	return view
}

// SelectedItem returns the currently selected item.
func (b *Base) SelectedItem() list.Item {
	return b.list.SelectedItem()
}

// SetItems replaces the list items and returns the list's filter command.
func (b *Base) SetItems(items []list.Item) tea.Cmd {
	return b.list.SetItems(items)
}

// SetTitle sets the list title.
func (b *Base) SetTitle(title string) {
	b.list.Title = title
}
