package textdecode

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Result describes a decoded description.
type Result struct {
	Text string
	// Encoding is the detected encoding name (e.g. "utf-8", "windows-1252").
	Encoding string
	// Certain is true when the encoding came from a byte order mark.
	Certain bool
	// Lossy is true when undecodable bytes were replaced with U+FFFD.
	Lossy bool
}

// Decode converts raw description bytes to text. The encoding is detected
// heuristically; if decoding with it fails the bytes are read as UTF-8 with
// invalid sequences replaced by U+FFFD. Decode never fails.
func Decode(raw []byte) Result {
	if len(raw) == 0 {
		return Result{Encoding: "utf-8"}
	}

	enc, name, certain := charset.DetermineEncoding(raw, "text/plain")
	// Without a byte order mark the detector only samples a prefix, so valid
	// UTF-8 input wins over its single-byte guess.
	if !certain && utf8.Valid(raw) {
		return decodeUTF8(raw, false)
	}
	if enc == nil || enc == encoding.Nop || name == "utf-8" {
		return decodeUTF8(raw, certain)
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil || !utf8.Valid(decoded) {
		result := decodeUTF8(raw, false)
		result.Lossy = true
		return result
	}
	return Result{
		Text:     strings.TrimPrefix(string(decoded), "\ufeff"),
		Encoding: name,
		Certain:  certain,
	}
}

// DecodeString is Decode returning only the text.
func DecodeString(raw []byte) string {
	return Decode(raw).Text
}

func decodeUTF8(raw []byte, certain bool) Result {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return Result{Text: string(raw), Encoding: "utf-8", Certain: certain}
	}
	// The UTF-8 decoder substitutes U+FFFD for each invalid sequence.
	decoded, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		decoded = []byte(strings.ToValidUTF8(string(raw), "\uFFFD"))
	}
	return Result{Text: string(decoded), Encoding: "utf-8", Certain: certain, Lossy: true}
}
