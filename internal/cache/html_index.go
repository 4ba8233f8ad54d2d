package cache

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/booklog/internal/catalog"
)

// IndexBook represents a book for HTML index generation.
type IndexBook struct {
	Book      catalog.Book
	CoverPath string // local cached cover, if any
}

// IndexBooks pairs each book with its cached cover, when one exists.
func (m *Manager) IndexBooks(books []catalog.Book) []IndexBook {
	out := make([]IndexBook, len(books))
	for i, b := range books {
		out[i] = IndexBook{Book: b}
		if m.Exists(b.ID) {
			out[i].CoverPath = m.Path(b.ID)
		}
	}
	return out
}

// IndexPath is where GenerateHTMLIndex writes.
func (m *Manager) IndexPath() string {
	return filepath.Join(m.baseDir, "index.html")
}

// GenerateHTMLIndex writes index.html into the cache directory, listing
// books in the order given.
func (m *Manager) GenerateHTMLIndex(books []IndexBook) (string, error) {
	if err := os.MkdirAll(m.baseDir, 0750); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	indexPath := m.IndexPath()
	if err := os.WriteFile(indexPath, []byte(generateHTML(books, m.baseDir)), 0644); err != nil {
		return "", fmt.Errorf("writing index.html: %w", err)
	}
	return indexPath, nil
}

func generateHTML(books []IndexBook, baseDir string) string {
	var s strings.Builder

	s.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>booklog</title>
    <style>
        :root {
            --orange: #fb6820;
            --teal-light: #2ecfd4;
            --teal-dim: #0d3536;
            --teal-card: #1c2829;
            --teal-border: #1e3a3c;
            --teal-nav-border: #1b4e50;
        }
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            background: #1a1a1a;
            color: #e0e0e0;
            line-height: 1.6;
        }
        .sticky-nav {
            position: sticky;
            top: 0;
            z-index: 1000;
            background: #1a1a1a;
            padding: 20px 20px 10px;
            border-bottom: 2px solid var(--teal-nav-border);
        }
        header, .controls, #library { max-width: 1200px; margin: 0 auto 15px; }
        h1 { font-size: 2rem; color: var(--orange); }
        .subtitle { color: #888; font-size: 0.9rem; }
        .controls { display: flex; gap: 15px; }
        #search, #sort-by {
            padding: 12px 15px;
            font-size: 0.95rem;
            background: #2a2a2a;
            border: 1px solid #444;
            border-radius: 8px;
            color: #e0e0e0;
        }
        #search { flex: 1; }
        #search:focus, #sort-by:focus { outline: none; border-color: var(--teal-light); }
        #library {
            padding: 20px;
            display: grid;
            grid-template-columns: repeat(auto-fill, minmax(260px, 1fr));
            gap: 20px;
        }
        .book-card {
            background: var(--teal-card);
            border: 1px solid var(--teal-border);
            border-radius: 8px;
            padding: 15px;
        }
        .book-cover {
            height: 200px;
            background: #1a1a1a;
            border-radius: 4px;
            margin-bottom: 12px;
            display: flex;
            align-items: center;
            justify-content: center;
            overflow: hidden;
            font-size: 3rem;
        }
        .book-cover img { max-width: 100%; max-height: 100%; object-fit: contain; }
        .book-title { font-weight: 600; color: #fff; }
        .book-author { font-size: 0.9rem; color: #aaa; }
        .book-meta { font-size: 0.85rem; color: #888; margin: 6px 0; }
        .stars { color: var(--orange); letter-spacing: 2px; }
        details summary { cursor: pointer; color: var(--teal-light); font-size: 0.85rem; }
        details p { font-size: 0.9rem; margin-top: 6px; }
        .no-results { text-align: center; color: #888; padding: 40px; display: none; }
    </style>
</head>
<body>
    <div class="sticky-nav">
        <header>
            <h1>booklog</h1>
            <div class="subtitle">` + fmt.Sprintf("%d books", len(books)) + `</div>
        </header>
        <div class="controls">
            <input type="text" id="search" placeholder="Search by title or author...">
            <select id="sort-by">
                <option value="dateRead">Date Read</option>
                <option value="rating">Rating</option>
                <option value="title">Title</option>
            </select>
        </div>
    </div>

    <div id="library">
`)

	for i, book := range books {
		renderBookCard(&s, book, i, baseDir)
	}

	s.WriteString(`    </div>
    <div id="no-results" class="no-results">No books match your search.</div>

    <script>
        const search = document.getElementById('search');
        const sortBy = document.getElementById('sort-by');
        const library = document.getElementById('library');
        const noResults = document.getElementById('no-results');

        function applyFilters() {
            const q = search.value.toLowerCase();
            let visible = 0;
            library.querySelectorAll('.book-card').forEach(card => {
                const hay = (card.dataset.title + ' ' + card.dataset.author).toLowerCase();
                const show = q === '' || hay.includes(q);
                card.style.display = show ? 'block' : 'none';
                if (show) visible++;
            });
            noResults.style.display = visible === 0 && q !== '' ? 'block' : 'none';
        }

        function sortBooks() {
            const cards = Array.from(library.querySelectorAll('.book-card'));
            cards.sort((a, b) => {
                switch (sortBy.value) {
                case 'rating':
                    return parseInt(b.dataset.rating) - parseInt(a.dataset.rating) || a.dataset.index - b.dataset.index;
                case 'title':
                    return a.dataset.title.localeCompare(b.dataset.title) || a.dataset.index - b.dataset.index;
                default:
                    return b.dataset.date.localeCompare(a.dataset.date) || a.dataset.index - b.dataset.index;
                }
            });
            cards.forEach(card => library.appendChild(card));
        }

        search.addEventListener('input', applyFilters);
        sortBy.addEventListener('change', sortBooks);
    </script>
</body>
</html>
`)

	return s.String()
}

func renderBookCard(s *strings.Builder, book IndexBook, index int, baseDir string) {
	b := book.Book
	fmt.Fprintf(s, `        <div class="book-card" data-id="%s" data-title="%s" data-author="%s" data-rating="%d" data-date="%s" data-index="%d">
            <div class="book-cover">`,
		html.EscapeString(b.ID),
		html.EscapeString(b.Title),
		html.EscapeString(b.Author),
		b.Rating,
		html.EscapeString(b.DateRead),
		index,
	)

	switch {
	case book.CoverPath != "":
		// Covers live next to index.html.
		rel, err := filepath.Rel(baseDir, book.CoverPath)
		if err != nil {
			rel = book.CoverPath
		}
		fmt.Fprintf(s, `<img src="%s" alt="Cover">`, html.EscapeString(filepath.ToSlash(rel)))
	case b.CoverURL != "":
		fmt.Fprintf(s, `<img src="%s" alt="Cover">`, html.EscapeString(b.CoverURL))
	default:
		s.WriteString("📖")
	}

	s.WriteString(`</div>
            <div class="book-title">` + html.EscapeString(b.Title) + `</div>
            <div class="book-author">` + html.EscapeString(b.Author) + `</div>
            <div class="book-meta"><span class="stars">` + b.Stars() + `</span> · read ` + html.EscapeString(catalog.FormatDate(b.DateRead)) + `</div>
`)

	if strings.TrimSpace(b.Notes) != "" {
		s.WriteString(`            <details><summary>Notes</summary>
`)
		for _, p := range b.Paragraphs() {
			if strings.TrimSpace(p) == "" {
				continue
			}
			s.WriteString(`                <p>` + html.EscapeString(p) + `</p>
`)
		}
		s.WriteString(`            </details>
`)
	}

	s.WriteString(`        </div>
`)
}
