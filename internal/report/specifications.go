package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
)

// Specification is one label/value row of the product specification table.
type Specification struct {
	Label string
	Value string
}

// Specifications is an ordered label→text mapping that keeps the order the
// labels appear in the source document.
type Specifications struct {
	entries []Specification
	present bool
}

// NewSpecifications builds a present specification table from rows.
func NewSpecifications(rows ...Specification) Specifications {
	return Specifications{entries: append([]Specification(nil), rows...), present: true}
}

// Present reports whether the document carried a specifications object.
func (s Specifications) Present() bool { return s.present }

// Len returns the number of rows.
func (s Specifications) Len() int { return len(s.entries) }

// All returns a copy of the rows in document order.
func (s Specifications) All() []Specification {
	return append([]Specification(nil), s.entries...)
}

// Get returns the value for label, if any.
func (s Specifications) Get(label string) (string, bool) {
	for _, e := range s.entries {
		if e.Label == label {
			return e.Value, true
		}
	}
	return "", false
}

// UnmarshalJSON decodes an object while preserving key order. Non-string
// scalars keep their JSON text; a null object leaves the table absent.
func (s *Specifications) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*s = Specifications{}
		return nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("report: specifications must be an object")
	}

	var entries []Specification
	err := jsonparser.ObjectEach(trimmed, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		label, err := jsonparser.ParseString(key)
		if err != nil {
			return fmt.Errorf("report: specification label: %w", err)
		}
		var text string
		switch dataType {
		case jsonparser.String:
			text, err = jsonparser.ParseString(value)
			if err != nil {
				return fmt.Errorf("report: specification %q: %w", label, err)
			}
		case jsonparser.Null:
			text = ""
		default:
			text = string(value)
		}
		entries = append(entries, Specification{Label: label, Value: text})
		return nil
	})
	if err != nil {
		return err
	}

	*s = Specifications{entries: entries, present: true}
	return nil
}

// MarshalJSON encodes the table as an object in row order.
func (s Specifications) MarshalJSON() ([]byte, error) {
	if !s.present {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
