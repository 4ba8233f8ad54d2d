package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/github"
)

// GitHub stores the collection as a JSON file in a repository, using the
// Contents API. The revision is the file's blob SHA.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
	path   string
	branch string
}

// NewGitHub returns a store backed by owner/repo at path.
func NewGitHub(owner, repo, path, branch, token, apiBase string) (*GitHub, error) {
	if owner == "" || repo == "" {
		return nil, errors.New("github.owner and github.repo are required")
	}
	if token == "" {
		return nil, errors.New("no GitHub token; set github.token_env")
	}
	if path == "" {
		path = "books.json"
	}
	return &GitHub{
		client: github.New(token, apiBase),
		owner:  owner,
		repo:   repo,
		path:   path,
		branch: branch,
	}, nil
}

func (g *GitHub) Name() string { return BackendGitHub }

func (g *GitHub) Close() error { return nil }

func (g *GitHub) ReadAll(ctx context.Context) (catalog.Snapshot, error) {
	data, sha, err := g.fetch(ctx)
	if err != nil {
		return catalog.Snapshot{}, err
	}
	books, err := decode(data)
	if err != nil {
		return catalog.Snapshot{}, err
	}
	if sha == "" {
		sha = emptyRevision
	}
	return catalog.Snapshot{Books: books, Revision: sha}, nil
}

func (g *GitHub) WriteAll(ctx context.Context, books []catalog.Book, expect string) (string, error) {
	data, err := encode(books)
	if err != nil {
		return "", err
	}

	sha := expect
	if expect == emptyRevision {
		sha = ""
	}
	if expect == "" {
		// GitHub wants the current blob SHA even for unconditional
		// updates, so look it up right before writing.
		if _, sha, err = g.fetch(ctx); err != nil {
			return "", err
		}
	}

	msg := fmt.Sprintf("booklog: update %s (%d books)", g.path, len(books))
	newSHA, err := g.client.PutFileContent(ctx, g.owner, g.repo, g.path, g.branch, msg, data, sha)
	switch {
	case errors.Is(err, github.ErrConflict):
		return "", fmt.Errorf("%w: %s changed on GitHub", catalog.ErrConflict, g.path)
	case err != nil:
		return "", persistErr("writing collection", err)
	}
	return newSHA, nil
}

// fetch returns the file content and blob SHA. A missing file is an empty
// collection with an empty SHA.
func (g *GitHub) fetch(ctx context.Context) ([]byte, string, error) {
	data, sha, err := g.client.GetFileContent(ctx, g.owner, g.repo, g.path, g.branch)
	if errors.Is(err, github.ErrNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", persistErr("reading collection", err)
	}
	return data, sha, nil
}
