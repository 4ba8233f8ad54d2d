package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/tui/delegate"
	"github.com/blackwell-systems/booklog/internal/tui/picker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
)

// BrowserOptions configures RunBrowser.
type BrowserOptions struct {
	// Load fetches the collection. It is called on start and on reload.
	Load   func(ctx context.Context) ([]catalog.Book, error)
	Sort   catalog.SortKey
	Locale language.Tag
	// CoverImage returns a locally cached cover for b, if any.
	CoverImage func(b catalog.Book) (path string, ok bool)
}

type booksLoadedMsg struct {
	books []catalog.Book
	err   error
}

type browserModel struct {
	opts    BrowserOptions
	keys    BrowserKeys
	base    *picker.Base
	books   []catalog.Book
	view    catalog.View
	loading bool
	loadErr error
	detail  *catalog.Book

	activeCmd string
	width     int
	height    int
}

const browserFooterHeight = 1

func newBrowser(opts BrowserOptions) browserModel {
	keys := NewBrowserKeys()

	l := list.New(nil, delegate.New(renderBookItem), 0, 0)
	l.SetShowStatusBar(true)
	l.SetStatusBarItemName("book", "books")
	l.SetFilteringEnabled(true)
	l.Filter = substringFilter
	l.Styles.Title = StyleHeader
	l.Styles.PaginationStyle = StyleHelp
	l.Styles.HelpStyle = StyleHelp
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Sort, keys.Select}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Sort, keys.Select, keys.Reload}
	}

	m := browserModel{
		opts: opts,
		keys: keys,
		base: picker.New(picker.Config{
			List:         l,
			QuitKeys:     keys.Quit,
			SelectKeys:   keys.Select,
			ShowBorder:   true,
			BorderStyle:  StyleBorder,
			FooterHeight: browserFooterHeight,
		}),
		view:    catalog.View{Sort: opts.Sort, Locale: opts.Locale},
		loading: true,
	}
	if m.view.Sort == "" {
		m.view.Sort = catalog.DefaultSort
	}
	m.base.SetTitle(m.title())
	return m
}

func (m browserModel) Init() tea.Cmd {
	return m.load()
}

func (m browserModel) load() tea.Cmd {
	load := m.opts.Load
	return func() tea.Msg {
		books, err := load(context.Background())
		return booksLoadedMsg{books: books, err: err}
	}
}

func (m browserModel) title() string {
	n := len(m.books)
	noun := "books"
	if n == 1 {
		noun = "book"
	}
	return fmt.Sprintf("%d %s in your collection · sorted by %s", n, noun, m.view.Sort.Label())
}

// refresh re-applies the view to the loaded snapshot.
func (m *browserModel) refresh() tea.Cmd {
	m.base.SetTitle(m.title())
	return m.base.SetItems(bookItems(m.view.Apply(m.books)))
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ClearActiveCmdMsg:
		m.activeCmd = ""
		return m, nil

	case booksLoadedMsg:
		m.loading = false
		m.loadErr = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.books = msg.books
		return m, m.refresh()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		if m.detail != nil {
			switch {
			case key.Matches(msg, m.keys.Back):
				m.detail = nil
			case msg.String() == "q", msg.String() == "ctrl+c":
				return m, tea.Quit
			}
			return m, nil
		}

		if m.loadErr != nil || m.loading {
			switch {
			case key.Matches(msg, m.keys.Reload) && !m.loading:
				m.loading = true
				m.loadErr = nil
				return m, m.load()
			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit
			}
			return m, nil
		}

		if !m.base.Filtering() {
			switch {
			case key.Matches(msg, m.keys.Sort):
				m.view.Sort = m.view.Sort.Next()
				m.activeCmd = "s"
				return m, tea.Batch(m.refresh(), HighlightCmd())

			case key.Matches(msg, m.keys.Reload):
				m.loading = true
				m.activeCmd = "r"
				return m, tea.Batch(m.load(), HighlightCmd())

			case key.Matches(msg, m.keys.Select):
				if item, ok := m.base.SelectedItem().(BookItem); ok {
					b := item.Book
					m.detail = &b
				}
				return m, nil
			}
		}
	}

	cmd := m.base.Update(msg)
	return m, cmd
}

func (m browserModel) View() string {
	switch {
	case m.detail != nil:
		return m.renderDetail(*m.detail)
	case m.loadErr != nil:
		return StyleBorder.Render(lipgloss.NewStyle().Padding(1, 2).Render(
			StyleError.Render("Failed to load books: "+m.loadErr.Error()) + "\n\n" +
				RenderFooterBar([]ShortcutEntry{
					{Key: "r", Label: "r retry"},
					{Key: "", Label: "q quit"},
				}, m.activeCmd)))
	case m.loading && len(m.books) == 0:
		return StyleBorder.Render(lipgloss.NewStyle().Padding(1, 2).Render(StyleHelp.Render("Loading books…")))
	}

	return m.base.View() + "\n" + RenderFooterBar([]ShortcutEntry{
		{Key: "/", Label: "/ filter"},
		{Key: "s", Label: "s sort"},
		{Key: "r", Label: "r reload"},
		{Key: "", Label: "enter details"},
		{Key: "", Label: "q quit"},
	}, m.activeCmd)
}

func (m browserModel) renderDetail(b catalog.Book) string {
	var s strings.Builder

	if m.opts.CoverImage != nil {
		if path, ok := m.opts.CoverImage(b); ok {
			if img := RenderInlineImage(path, DetectImageProtocol()); img != "" {
				s.WriteString(img)
				s.WriteString("\n\n")
			}
		}
	}

	s.WriteString(StyleHeader.Render(b.Title))
	s.WriteString("\n")
	s.WriteString(StyleHelp.Render("by " + b.Author))
	s.WriteString("\n\n")
	s.WriteString(StyleStars.Render(b.Stars()))
	s.WriteString("  ")
	s.WriteString(StyleDate.Render("Read on " + catalog.FormatDate(b.DateRead)))
	s.WriteString("\n")
	if b.ISBN != "" {
		s.WriteString(StyleHelp.Render("ISBN " + b.ISBN))
		s.WriteString("\n")
	}
	if b.CoverURL != "" {
		s.WriteString(StyleHelp.Render(b.CoverURL))
		s.WriteString("\n")
	}

	width := m.width - 8
	if width < 30 {
		width = 30
	}
	para := lipgloss.NewStyle().Width(width)
	s.WriteString("\n")
	for _, p := range b.Paragraphs() {
		s.WriteString(para.Render(p))
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(RenderFooterBar([]ShortcutEntry{
		{Key: "", Label: "esc back"},
		{Key: "", Label: "q quit"},
	}, ""))

	return StyleBorder.Render(lipgloss.NewStyle().Padding(1, 2).Render(s.String()))
}

// substringFilter matches the filter term case-insensitively anywhere in
// the title or author, keeping list order.
func substringFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(strings.TrimSpace(term))
	var ranks []list.Rank
	for i, t := range targets {
		lt := strings.ToLower(t)
		at := strings.Index(lt, term)
		if at < 0 {
			continue
		}
		matched := make([]int, 0, len(term))
		for j := at; j < at+len(term); j++ {
			matched = append(matched, j)
		}
		ranks = append(ranks, list.Rank{Index: i, MatchedIndexes: matched})
	}
	return ranks
}

// RunBrowser launches the interactive book browser.
func RunBrowser(opts BrowserOptions) error {
	if opts.Load == nil {
		return fmt.Errorf("browser needs a loader")
	}
	p := tea.NewProgram(newBrowser(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
