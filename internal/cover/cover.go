// Package cover looks up book cover images in the Open Library covers
// catalog.
package cover

import (
	"context"
	"fmt"
	"strings"
)

// Resolver maps an ISBN to a cover image URL. ok is false when there is no
// real cover or the lookup failed; lookups never return errors.
type Resolver interface {
	Resolve(ctx context.Context, isbn string) (url string, ok bool)
}

// Size is a cover image size accepted by the catalog.
type Size string

const (
	SizeSmall  Size = "S"
	SizeMedium Size = "M"
	SizeLarge  Size = "L"
)

// DefaultSize is used when no size is configured.
const DefaultSize = SizeMedium

// ParseSize accepts S, M or L in either case. Empty input is DefaultSize.
func ParseSize(s string) (Size, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return DefaultSize, nil
	case "S":
		return SizeSmall, nil
	case "M":
		return SizeMedium, nil
	case "L":
		return SizeLarge, nil
	}
	return "", fmt.Errorf("unknown cover size %q (want S, M or L)", s)
}

// PreviewMinLength is the shortest ISBN worth previewing while it is
// still being typed.
const PreviewMinLength = 10

// CanPreview reports whether isbn is long enough to look up as a preview.
func CanPreview(isbn string) bool {
	return len(strings.TrimSpace(isbn)) >= PreviewMinLength
}
