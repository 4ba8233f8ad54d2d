package ingest

import "testing"

func TestGuessFilenameFromURL(t *testing.T) {
	tests := map[string]string{
		"https://example.com/exports/books.json":   "books.json",
		"https://example.com/books.yml?token=abc1": "books.yml",
		"https://example.com/books.json#top":       "books.json",
		"https://example.com/":                     "download",
		"https://example.com":                      "download",
	}
	for in, want := range tests {
		if got := guessFilenameFromURL(in); got != want {
			t.Errorf("guessFilenameFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGitHubPathRe(t *testing.T) {
	m := githubPathRe.FindStringSubmatch("github:alice/notes@main:data/books.json")
	if m == nil || m[1] != "alice" || m[2] != "notes" || m[3] != "main" || m[4] != "data/books.json" {
		t.Errorf("with ref: got %q", m)
	}
	m = githubPathRe.FindStringSubmatch("github:alice/notes:books.yml")
	if m == nil || m[3] != "" || m[4] != "books.yml" {
		t.Errorf("without ref: got %q", m)
	}
	if githubPathRe.MatchString("github:alice") {
		t.Error("matched a path with no repo")
	}
}
