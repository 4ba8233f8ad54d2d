package delegate

import (
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// RenderFunc renders one list item.
// It receives the writer, list model, item index, and the item itself.
type RenderFunc func(w io.Writer, m list.Model, index int, item list.Item)

// Base provides a reusable delegate implementation.
// Book rows only differ in rendering; height, spacing and update are shared.
type Base struct {
	height   int
	spacing  int
	renderFn RenderFunc
}

// New creates a new base delegate with the given render function.
// Uses height=1, spacing=0 and a no-op update.
func New(renderFn RenderFunc) Base {
	return Base{
		height:   1,
		spacing:  0,
		renderFn: renderFn,
	}
}

// NewWithHeight creates a base delegate whose rows span height lines.
func NewWithHeight(renderFn RenderFunc, height int) Base {
	if height < 1 {
		height = 1
	}
	return Base{
		height:   height,
		renderFn: renderFn,
	}
}

// Height implements list.ItemDelegate
func (d Base) Height() int {
	return d.height
}

// Spacing implements list.ItemDelegate
func (d Base) Spacing() int {
	return d.spacing
}

// Update implements list.ItemDelegate
func (d Base) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// Render implements list.ItemDelegate
func (d Base) Render(w io.Writer, m list.Model, index int, item list.Item) {
	if d.renderFn != nil {
		d.renderFn(w, m, index, item)
	}
}
