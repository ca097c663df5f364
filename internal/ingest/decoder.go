package ingest

import (
	"strconv"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"golang.org/x/text/encoding/charmap"
)

// RawKey holds the text of a payload that is not a JSON object.
const RawKey = "raw"

var jsonAPI = sonic.ConfigStd

// textDecoder converts payload bytes to text, or reports that it cannot.
type textDecoder func(payload []byte) (string, bool)

func decodeUTF8(payload []byte) (string, bool) {
	if !utf8.Valid(payload) {
		return "", false
	}
	return string(payload), true
}

// decodeLatin1 maps every byte to a code point, so it never fails.
func decodeLatin1(payload []byte) (string, bool) {
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(payload)
	if err != nil {
		return "", false
	}
	return string(text), true
}

// Decoder turns raw payload bytes into text and a structured mapping.
// It never fails.
type Decoder struct {
	chain []textDecoder
}

func NewDecoder() *Decoder {
	return &Decoder{chain: []textDecoder{decodeUTF8, decodeLatin1}}
}

// DecodeText returns the payload as text using the first decoder that accepts it.
func (d *Decoder) DecodeText(payload []byte) string {
	for _, decode := range d.chain {
		if text, ok := decode(payload); ok {
			return text
		}
	}
	// unreachable with latin-1 last in the chain
	return string(payload)
}

// Decode returns the payload text and its structured form. Anything that is
// not a JSON object becomes {"raw": text}.
func (d *Decoder) Decode(payload []byte) (string, map[string]any) {
	text := d.DecodeText(payload)

	var doc any
	if err := jsonAPI.UnmarshalFromString(text, &doc); err == nil {
		if obj, ok := doc.(map[string]any); ok {
			return text, obj
		}
	}
	return text, map[string]any{RawKey: text}
}

// fieldString renders a decoded JSON value as the text stored in the event table.
func fieldString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		out, err := jsonAPI.MarshalToString(val)
		if err != nil {
			return ""
		}
		return out
	}
}
