package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// FileContent is the GitHub Contents API response for a file.
type FileContent struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Size     int    `json:"size"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
	HTMLURL  string `json:"html_url"`
}

// putRequest is the body of a Contents API create-or-update call.
type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putResponse struct {
	Content FileContent `json:"content"`
}

// GetFileContent fetches a file's content via the Contents API.
// Returns (content, blobSHA, error). blobSHA is needed for PUT updates.
// For files > 1 MB it falls back to the Git Blobs API.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, string, error) {
	u := c.url("repos", owner, repo, "contents", path)
	if ref != "" {
		u += "?ref=" + url.QueryEscape(ref)
	}

	var fc FileContent
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &fc); err != nil {
		return nil, "", err
	}

	if fc.Encoding == "none" && fc.Size > 1*1024*1024 {
		data, err := c.getRawBlob(ctx, owner, repo, fc.SHA)
		return data, fc.SHA, err
	}

	// GitHub wraps base64 lines at 60 chars.
	cleaned := strings.ReplaceAll(fc.Content, "\n", "")
	data, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, "", fmt.Errorf("decoding contents: %w", err)
	}
	return data, fc.SHA, nil
}

// PutFileContent creates or replaces a file. sha must be the blob SHA the
// caller last read, or empty when creating the file. A stale sha fails with
// ErrConflict. Returns the new blob SHA.
func (c *Client) PutFileContent(ctx context.Context, owner, repo, path, branch, message string, content []byte, sha string) (string, error) {
	body := putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     sha,
		Branch:  branch,
	}
	var out putResponse
	if err := c.doJSON(ctx, http.MethodPut, c.url("repos", owner, repo, "contents", path), body, &out); err != nil {
		return "", err
	}
	return out.Content.SHA, nil
}

// getRawBlob downloads a blob by its SHA using the raw accept header.
// This bypasses the 1 MB base64 limit of the Contents API.
func (c *Client) getRawBlob(ctx context.Context, owner, repo, sha string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("repos", owner, repo, "git", "blobs", sha), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.raw")
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}
