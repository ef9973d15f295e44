package scan

import (
	"bytes"
)

// ExtractField returns the string value of the first "key":"value" pair in
// a decrypted reply. The reply is searched as text, not parsed as JSON, so
// replies from firmware that emits invalid JSON still yield their fields.
// A value with no closing quote counts as missing.
func ExtractField(reply []byte, key string) (string, bool) {
	marker := []byte(`"` + key + `":"`)
	start := bytes.Index(reply, marker)
	if start < 0 {
		return "", false
	}
	start += len(marker)

	end := bytes.IndexByte(reply[start:], '"')
	if end < 0 {
		return "", false
	}
	return string(reply[start : start+end]), true
}
