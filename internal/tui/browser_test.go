package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/blackwell-systems/booklog/internal/catalog"
	tea "github.com/charmbracelet/bubbletea"
)

func browserBooks() []catalog.Book {
	return []catalog.Book{
		{ID: "1", Title: "Dune", Author: "Frank Herbert", Rating: 4, DateRead: "2024-03-01", Notes: "Spice."},
		{ID: "2", Title: "Emma", Author: "Jane Austen", Rating: 5, DateRead: "2023-01-10", Notes: "Matchmaking."},
		{ID: "3", Title: "Beloved", Author: "Toni Morrison", Rating: 3, DateRead: "2024-06-15", Notes: "Haunting."},
	}
}

func listIDs(m browserModel) []string {
	var ids []string
	for _, it := range m.base.List().Items() {
		ids = append(ids, it.(BookItem).Book.ID)
	}
	return ids
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBrowser_LoadAndSortCycle(t *testing.T) {
	m := newBrowser(BrowserOptions{Load: func(context.Context) ([]catalog.Book, error) {
		return browserBooks(), nil
	}})

	next, _ := m.Update(m.Init()())
	m = next.(browserModel)
	if got := listIDs(m); !equalIDs(got, []string{"3", "1", "2"}) {
		t.Errorf("dateRead order = %v, want [3 1 2]", got)
	}

	next, _ = m.Update(runes("s"))
	m = next.(browserModel)
	if m.view.Sort != catalog.SortByRating {
		t.Fatalf("sort = %q, want rating", m.view.Sort)
	}
	if got := listIDs(m); !equalIDs(got, []string{"2", "1", "3"}) {
		t.Errorf("rating order = %v, want [2 1 3]", got)
	}

	next, _ = m.Update(runes("s"))
	m = next.(browserModel)
	if got := listIDs(m); !equalIDs(got, []string{"3", "1", "2"}) {
		t.Errorf("title order = %v, want [3 1 2]", got)
	}
}

func TestBrowser_RetryAfterFailedLoad(t *testing.T) {
	calls := 0
	m := newBrowser(BrowserOptions{Load: func(context.Context) ([]catalog.Book, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("disk on fire")
		}
		return browserBooks(), nil
	}})

	next, _ := m.Update(m.Init()())
	m = next.(browserModel)
	if m.loadErr == nil {
		t.Fatal("expected load error")
	}

	next, cmd := m.Update(runes("r"))
	m = next.(browserModel)
	if cmd == nil {
		t.Fatal("r should reload")
	}
	next, _ = m.Update(cmd())
	m = next.(browserModel)
	if m.loadErr != nil {
		t.Errorf("loadErr = %v after retry", m.loadErr)
	}
	if len(listIDs(m)) != 3 {
		t.Errorf("got %d books after retry, want 3", len(listIDs(m)))
	}
	if calls != 2 {
		t.Errorf("loader called %d times, want 2", calls)
	}
}

func TestBrowser_DetailAndBack(t *testing.T) {
	m := newBrowser(BrowserOptions{Load: func(context.Context) ([]catalog.Book, error) {
		return browserBooks(), nil
	}})
	next, _ := m.Update(m.Init()())
	m = next.(browserModel)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(browserModel)
	if m.detail == nil || m.detail.ID != "3" {
		t.Fatalf("detail = %v, want book 3", m.detail)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(browserModel)
	if m.detail != nil {
		t.Error("esc should return to the list")
	}
}

func TestBrowser_Title(t *testing.T) {
	m := newBrowser(BrowserOptions{Load: func(context.Context) ([]catalog.Book, error) {
		return browserBooks()[:1], nil
	}})
	next, _ := m.Update(m.Init()())
	m = next.(browserModel)
	if got, want := m.base.List().Title, "1 book in your collection · sorted by Date Read"; got != want {
		t.Errorf("title = %q, want %q", got, want)
	}
}

func TestSubstringFilter(t *testing.T) {
	targets := []string{"Dune Frank Herbert", "Emma Jane Austen", "Beloved Toni Morrison"}

	ranks := substringFilter("AUST", targets)
	if len(ranks) != 1 || ranks[0].Index != 1 {
		t.Fatalf("ranks = %+v, want only index 1", ranks)
	}
	if len(ranks[0].MatchedIndexes) != 4 {
		t.Errorf("matched %d chars, want 4", len(ranks[0].MatchedIndexes))
	}

	if got := substringFilter("e", targets); len(got) != 3 {
		t.Errorf("'e' matched %d targets, want 3", len(got))
	}
	if got := substringFilter("zzz", targets); len(got) != 0 {
		t.Errorf("'zzz' matched %d targets, want 0", len(got))
	}
}
