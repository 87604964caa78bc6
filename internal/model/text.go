package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Text is a scalar value from the ranking API kept as display text.
// The upstream dataset mixes strings ("#1", "4.2%"), numbers and nulls in the
// same columns, so every scalar is normalised to its textual form. Null
// decodes to the empty string.
type Text string

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '{', '[':
		return fmt.Errorf("model: expected scalar value, got %q", b[0])
	default:
		// Numbers print in their shortest form, so 12.0 reads as 12.
		// Booleans keep their literal spelling.
		if f, err := strconv.ParseFloat(string(b), 64); err == nil {
			*t = Text(strconv.FormatFloat(f, 'f', -1, 64))
			return nil
		}
		*t = Text(b)
	}
	return nil
}

// String returns the text value.
func (t Text) String() string {
	return string(t)
}

// IsEmpty reports whether the value is missing or blank.
func (t Text) IsEmpty() bool {
	return t == ""
}
