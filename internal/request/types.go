package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Text accepts any JSON scalar and keeps its textual form. null and absence
// leave it unset.
type Text struct {
	Value string
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = Text{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Text{Value: s, Set: true}
		return nil
	}
	*t = Text{Value: string(b), Set: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Set {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// Number accepts a JSON number or a numeric string. Anything else is
// remembered as invalid and reported by Validate.
type Number struct {
	Value   float64
	Set     bool
	invalid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*n = Number{}
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		n.set(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, perr := strconv.ParseFloat(strings.TrimSpace(s), 64); perr == nil {
			n.set(v)
			return nil
		}
	}
	n.invalid = true
	return nil
}

// set stores v; NaN and ±Inf are not numbers a JSON response can carry.
func (n *Number) set(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		n.invalid = true
		return
	}
	n.Value, n.Set = v, true
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Validate implements validation.Validatable.
func (n Number) Validate() error {
	if n.invalid {
		return errors.New("must be a number")
	}
	return nil
}

// Ptr returns the value or nil when unset.
func (n Number) Ptr() *float64 {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}

// NewNumber builds a set Number.
func NewNumber(v float64) Number { return Number{Value: v, Set: true} }

// NewText builds a set Text.
func NewText(v string) Text { return Text{Value: v, Set: true} }
