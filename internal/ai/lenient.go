package ai

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Models do not always respect the requested JSON types. Number, Bool and
// Text decode what a model plausibly writes for each and fall back to the
// zero value instead of failing the whole document.

var null = []byte("null")

// Number accepts a JSON number, a numeric string (an optional trailing % is
// ignored) or null.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*n = 0
	if bytes.Equal(b, null) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "%")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			*n = Number(f)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Bool accepts true/false, "true"/"yes"/"false"/"no" in any case, or null.
type Bool bool

func (v *Bool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*v = false
	if bytes.Equal(b, null) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "y":
			*v = true
		}
		return nil
	}
	var x bool
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}
	*v = Bool(x)
	return nil
}

// Text accepts a string, a number or a bool and keeps its literal form.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = ""
	if bytes.Equal(b, null) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	if len(b) > 0 && (b[0] == '{' || b[0] == '[') {
		return nil
	}
	*t = Text(b)
	return nil
}
