package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/blackwell-systems/booklog/internal/form"
	tea "github.com/charmbracelet/bubbletea"
)

type stubCovers struct {
	mu    sync.Mutex
	found map[string]string
	calls []string
}

func (s *stubCovers) Resolve(_ context.Context, isbn string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, isbn)
	url, ok := s.found[isbn]
	return url, ok
}

func newTestForm(covers *stubCovers, in form.Input) bookFormModel {
	opts := BookFormOptions{Heading: "Add Book", Initial: in}
	if covers != nil {
		opts.Covers = covers
	}
	return newBookForm(opts)
}

func filledInput() form.Input {
	return form.Input{
		Title:    "Dune",
		Author:   "Frank Herbert",
		Rating:   "5",
		Notes:    "Spice.\nSand.",
		DateRead: "2024-03-01",
	}
}

func TestBookForm_StalePreviewDropped(t *testing.T) {
	covers := &stubCovers{found: map[string]string{
		"9780441013593": "https://covers.example/dune.jpg",
		"9780141439587": "https://covers.example/emma.jpg",
	}}
	m := newTestForm(covers, filledInput())

	m.inputs[fieldISBN].SetValue("9780441013593")
	first := m.syncPreview()
	m.inputs[fieldISBN].SetValue("9780141439587")
	second := m.syncPreview()
	if first == nil || second == nil {
		t.Fatal("expected lookups for both ISBNs")
	}

	next, _ := m.Update(first())
	m = next.(bookFormModel)
	if m.preview != previewLoading {
		t.Fatalf("stale result applied: preview = %v", m.preview)
	}

	next, _ = m.Update(second())
	m = next.(bookFormModel)
	if m.preview != previewFound {
		t.Fatalf("preview = %v, want found", m.preview)
	}
	if m.previewURL != "https://covers.example/emma.jpg" {
		t.Errorf("previewURL = %q, want emma cover", m.previewURL)
	}
}

func TestBookForm_ShortISBNClearsPreview(t *testing.T) {
	covers := &stubCovers{found: map[string]string{"9780441013593": "https://covers.example/dune.jpg"}}
	m := newTestForm(covers, filledInput())

	m.inputs[fieldISBN].SetValue("9780441013593")
	pending := m.syncPreview()

	m.inputs[fieldISBN].SetValue("978044")
	if cmd := m.syncPreview(); cmd != nil {
		t.Error("short ISBN should not start a lookup")
	}
	if m.preview != previewIdle {
		t.Errorf("preview = %v, want idle", m.preview)
	}

	next, _ := m.Update(pending())
	m = next.(bookFormModel)
	if m.preview != previewIdle {
		t.Errorf("abandoned lookup changed preview to %v", m.preview)
	}
}

func TestBookForm_NoResult(t *testing.T) {
	covers := &stubCovers{found: map[string]string{}}
	m := newTestForm(covers, filledInput())

	m.inputs[fieldISBN].SetValue("0000000000")
	cmd := m.syncPreview()
	next, _ := m.Update(cmd())
	m = next.(bookFormModel)
	if m.preview != previewNone {
		t.Errorf("preview = %v, want none", m.preview)
	}
	if !strings.Contains(m.View(), "No cover found") {
		t.Error("view should say no cover was found")
	}
}

func TestBookForm_UnchangedISBNSkipsLookup(t *testing.T) {
	covers := &stubCovers{found: map[string]string{}}
	in := filledInput()
	in.ISBN = "9780441013593"
	m := newTestForm(covers, in)

	if m.preview != previewLoading {
		t.Fatalf("editing a book with an ISBN should preview on start, got %v", m.preview)
	}
	if cmd := m.syncPreview(); cmd != nil {
		t.Error("unchanged ISBN should not start another lookup")
	}
}

func TestBookForm_WithoutResolver(t *testing.T) {
	m := newTestForm(nil, filledInput())
	m.inputs[fieldISBN].SetValue("9780441013593")
	if cmd := m.syncPreview(); cmd != nil {
		t.Error("no resolver should mean no lookups")
	}
}

func TestBookForm_SubmitShowsErrors(t *testing.T) {
	in := filledInput()
	in.Author = "  "
	in.Rating = "6"
	m := newTestForm(nil, in)

	m.submit()
	if m.errs == nil {
		t.Fatal("expected validation errors")
	}
	if m.confirming {
		t.Error("invalid form must not reach confirmation")
	}
	if m.focused != fieldAuthor {
		t.Errorf("focused = %d, want author field", m.focused)
	}
	view := m.View()
	for _, want := range []string{"Author is required", "Rating must be between 1 and 5"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestBookForm_SubmitAndConfirm(t *testing.T) {
	m := newTestForm(nil, filledInput())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(bookFormModel)
	if !m.confirming {
		t.Fatal("valid form should ask for confirmation")
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m = next.(bookFormModel)
	if m.result == nil {
		t.Fatal("confirmation should produce a result")
	}
	if cmd == nil {
		t.Error("confirmation should quit")
	}
	if m.result.Title != "Dune" || m.result.Rating != 5 || m.result.Notes != "Spice.\nSand." {
		t.Errorf("result = %+v", *m.result)
	}
}

func TestBookForm_Cancel(t *testing.T) {
	m := newTestForm(nil, filledInput())
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(bookFormModel)
	if !m.canceled {
		t.Error("esc should cancel the form")
	}
	if m.result != nil {
		t.Error("canceled form has no result")
	}
}

func TestBookForm_TabCyclesFields(t *testing.T) {
	m := newTestForm(nil, filledInput())
	for i := 0; i < numFields; i++ {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = next.(bookFormModel)
	}
	if m.focused != fieldTitle {
		t.Errorf("focused = %d after a full cycle, want title", m.focused)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(bookFormModel)
	if m.focused != fieldDateRead {
		t.Errorf("focused = %d, want date field", m.focused)
	}
}
