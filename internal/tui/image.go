package tui

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg" // cover images are JPEG
	"image/png"
	"os"
	"strings"
)

// TerminalImageProtocol represents the image protocol supported by the terminal
type TerminalImageProtocol int

// Terminal image protocol types
const (
	// ProtocolNone indicates no image protocol support
	ProtocolNone TerminalImageProtocol = iota
	// ProtocolKitty indicates Kitty terminal graphics protocol
	ProtocolKitty
	// ProtocolITerm2 indicates iTerm2 inline images protocol
	ProtocolITerm2
)

// kittyChunk is the largest base64 payload Kitty accepts per escape.
const kittyChunk = 4096

// DetectImageProtocol detects which terminal image protocol is supported.
// BOOKLOG_INLINE_IMAGES=0 turns inline images off.
func DetectImageProtocol() TerminalImageProtocol {
	if v := os.Getenv("BOOKLOG_INLINE_IMAGES"); v == "0" || strings.EqualFold(v, "false") {
		return ProtocolNone
	}

	termProgram := os.Getenv("TERM_PROGRAM")
	term := os.Getenv("TERM")

	switch {
	case strings.Contains(term, "kitty"), termProgram == "ghostty":
		return ProtocolKitty
	case termProgram == "iTerm.app", termProgram == "WezTerm":
		return ProtocolITerm2
	}
	return ProtocolNone
}

// RenderInlineImage renders a cached cover inline using the terminal's
// protocol. Returns "" when the terminal or the file is unsuitable.
func RenderInlineImage(imagePath string, protocol TerminalImageProtocol) string {
	if protocol == ProtocolNone {
		return ""
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return ""
	}

	switch protocol {
	case ProtocolKitty:
		return renderKittyImage(data)
	case ProtocolITerm2:
		return renderITerm2Image(data)
	}
	return ""
}

// renderKittyImage transmits the image as PNG in 4096-byte chunks.
// Kitty only understands PNG, so other formats are re-encoded first.
func renderKittyImage(data []byte) string {
	pngData, err := toPNG(data)
	if err != nil {
		return ""
	}
	encoded := base64.StdEncoding.EncodeToString(pngData)

	var b strings.Builder
	for i := 0; i < len(encoded); i += kittyChunk {
		end := min(i+kittyChunk, len(encoded))
		more := 0
		if end < len(encoded) {
			more = 1
		}
		if i == 0 {
			fmt.Fprintf(&b, "\x1b_Ga=T,f=100,m=%d;%s\x1b\\", more, encoded[i:end])
		} else {
			fmt.Fprintf(&b, "\x1b_Gm=%d;%s\x1b\\", more, encoded[i:end])
		}
	}
	return b.String()
}

func toPNG(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, []byte("\x89PNG")) {
		return data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderITerm2Image uses iTerm2's inline images protocol, which accepts
// JPEG as is.
func renderITerm2Image(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf("\x1b]1337;File=inline=1;size=%d;width=20:%s\x07", len(data), encoded)
}
