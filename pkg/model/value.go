package model

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Number is an optional numeric field. Besides JSON numbers it accepts
// numeric strings ("1,234", "75%") because model-extracted parameters and
// online features are not strictly typed.
type Number struct {
	Value float64
	Valid bool
}

func NewNumber(v float64) Number {
	return Number{Value: v, Valid: true}
}

// ParseNumber converts a textual value. Empty text is a missing value.
func ParseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return Number{}, nil
	}

	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSuffix(s, "%")
		scale = 0.01
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return Number{}, goerr.Wrap(err, "invalid number", goerr.V("value", s))
	}
	return NewNumber(f * scale), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return goerr.Wrap(err, "failed to decode number")
	}

	switch v := raw.(type) {
	case nil:
		*n = Number{}
	case float64:
		*n = NewNumber(v)
	case string:
		parsed, err := ParseNumber(v)
		if err != nil {
			return err
		}
		*n = parsed
	default:
		return goerr.New("number expected", goerr.V("value", string(data)))
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Or returns def when the value is missing or zero
func (n Number) Or(def float64) float64 {
	if !n.Valid || n.Value == 0 {
		return def
	}
	return n.Value
}

// Flag is an optional boolean field accepting true/false, yes/no and 1/0.
type Flag struct {
	Value bool
	Valid bool
}

func NewFlag(v bool) Flag {
	return Flag{Value: v, Valid: true}
}

func ParseFlag(s string) (Flag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Flag{}, nil
	case "true", "yes", "y", "1":
		return NewFlag(true), nil
	case "false", "no", "n", "0", "no internet service", "no phone service":
		return NewFlag(false), nil
	default:
		return Flag{}, goerr.New("invalid flag", goerr.V("value", s))
	}
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return goerr.Wrap(err, "failed to decode flag")
	}

	switch v := raw.(type) {
	case nil:
		*f = Flag{}
	case bool:
		*f = NewFlag(v)
	case float64:
		*f = NewFlag(v != 0)
	case string:
		parsed, err := ParseFlag(v)
		if err != nil {
			return err
		}
		*f = parsed
	default:
		return goerr.New("boolean expected", goerr.V("value", string(data)))
	}
	return nil
}

func (f Flag) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Text is an optional string field. Numbers are kept in their decimal form.
type Text struct {
	Value string
	Valid bool
}

func NewText(v string) Text {
	return Text{Value: v, Valid: true}
}

func (t *Text) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return goerr.Wrap(err, "failed to decode text")
	}

	switch v := raw.(type) {
	case nil:
		*t = Text{}
	case string:
		*t = NewText(v)
	case float64:
		*t = NewText(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return goerr.New("string expected", goerr.V("value", string(data)))
	}
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// Or returns def when the value is missing or empty
func (t Text) Or(def string) string {
	if !t.Valid || t.Value == "" {
		return def
	}
	return t.Value
}
