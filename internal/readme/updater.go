// Package readme keeps a "Recently Read" list and the book count current
// in a markdown file, such as a GitHub profile README.
package readme

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/github"
	"github.com/blackwell-systems/booklog/internal/util"
)

// SectionHeader marks the list that Render rewrites.
const SectionHeader = "## Recently Read"

// DefaultLimit is how many books the section lists by default.
const DefaultLimit = 10

// Render returns content with the book count and the Recently Read section
// brought up to date. Files without those markers are returned unchanged.
func Render(content string, books []catalog.Book, limit int) string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	recent := catalog.View{Sort: catalog.SortByDateRead}.Apply(books)
	if len(recent) > limit {
		recent = recent[:limit]
	}
	entries := make([]string, len(recent))
	for i, b := range recent {
		entries[i] = formatEntry(b)
	}

	content = updateStats(content, len(books))
	return replaceRecentlyRead(content, entries)
}

// UpdateFile renders the markdown file at path in place. changed is false
// when the file already matched.
func UpdateFile(path string, books []catalog.Book, limit int) (changed bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	updated := Render(string(data), books, limit)
	if updated == string(data) {
		return false, nil
	}
	if err := util.WriteFileAtomic(path, []byte(updated), 0644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

// Updater renders a README stored in a GitHub repository.
type Updater struct {
	gh     *github.Client
	owner  string
	repo   string
	path   string
	branch string
}

// NewUpdater creates a new README updater. An empty path means README.md.
func NewUpdater(gh *github.Client, owner, repo, path, branch string) *Updater {
	if path == "" {
		path = "README.md"
	}
	return &Updater{
		gh:     gh,
		owner:  owner,
		repo:   repo,
		path:   path,
		branch: branch,
	}
}

// Update commits the rendered README when it differs. A repository without
// the file is left alone.
func (u *Updater) Update(ctx context.Context, books []catalog.Book, limit int) (changed bool, err error) {
	data, sha, err := u.gh.GetFileContent(ctx, u.owner, u.repo, u.path, u.branch)
	if errors.Is(err, github.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	updated := Render(string(data), books, limit)
	if updated == string(data) {
		return false, nil
	}

	msg := fmt.Sprintf("Update %s: %s read", u.path, countText(len(books)))
	if _, err := u.gh.PutFileContent(ctx, u.owner, u.repo, u.path, u.branch, msg, []byte(updated), sha); err != nil {
		return false, err
	}
	return true, nil
}

var statsRe = regexp.MustCompile(`\*\*\d+ books?\*\*`)

// updateStats rewrites "**N books**" with the current count.
func updateStats(content string, bookCount int) string {
	return statsRe.ReplaceAllString(content, "**"+countText(bookCount)+"**")
}

func countText(n int) string {
	if n == 1 {
		return "1 book"
	}
	return fmt.Sprintf("%d books", n)
}

func formatEntry(b catalog.Book) string {
	return fmt.Sprintf("- **%s** by %s %s (%s)", b.Title, b.Author, b.Stars(), b.DateRead)
}

// replaceRecentlyRead swaps the entries under SectionHeader for entries.
// Other lines in the section, such as an intro sentence, stay above the list.
func replaceRecentlyRead(content string, entries []string) string {
	start := strings.Index(content, SectionHeader)
	if start == -1 {
		return content
	}
	bodyStart := start + len(SectionHeader)
	end := len(content)
	if next := strings.Index(content[bodyStart:], "\n##"); next != -1 {
		end = bodyStart + next
	}

	var kept []string
	for _, line := range strings.Split(strings.Trim(content[bodyStart:end], "\n"), "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "- **") {
			continue
		}
		kept = append(kept, line)
	}

	var s strings.Builder
	s.WriteString(SectionHeader)
	s.WriteString("\n\n")
	if len(kept) > 0 {
		s.WriteString(strings.Join(kept, "\n"))
		s.WriteString("\n\n")
	}
	for _, e := range entries {
		s.WriteString(e)
		s.WriteString("\n")
	}
	return content[:start] + s.String() + content[end:]
}
