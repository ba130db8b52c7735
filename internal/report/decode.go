package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// Decode parses a ProductReport document. It only reports syntax and type
// errors; use Validate to check for expected fields.
func Decode(data []byte) (*ProductReport, error) {
	var r ProductReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("report: decode: %w", err)
	}
	return &r, nil
}

// DecodeReader reads the whole stream and decodes it.
func DecodeReader(r io.Reader) (*ProductReport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("report: read: %w", err)
	}
	return Decode(data)
}
