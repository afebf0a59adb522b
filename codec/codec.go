// Package codec implements the reversible transform applied to message
// bodies before transmission. This is obfuscation, not encryption: it only
// keeps payloads from being trivially readable on the wire.
package codec

import (
	"encoding/base64"
	"net/url"
)

// Encode turns plain text into its opaque wire form. Two stages: the text
// is first percent-escaped into a byte-safe ASCII representation, then
// wrapped in base64. Safe for any UTF-8 input, including multi-byte runes.
func Encode(text string) string {
	escaped := url.QueryEscape(text)
	return base64.StdEncoding.EncodeToString([]byte(escaped))
}

// Decode reverses both stages of Encode in the opposite order. It never
// fails: if the payload is not valid base64 or not a valid escape
// sequence, the opaque input is returned unchanged, so a corrupted or
// foreign-format frame degrades to garbled text instead of an error.
func Decode(opaque string) string {
	raw, err := base64.StdEncoding.DecodeString(opaque)
	if err != nil {
		return opaque
	}
	text, err := url.QueryUnescape(string(raw))
	if err != nil {
		return opaque
	}
	return text
}
