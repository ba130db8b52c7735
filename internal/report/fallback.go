package report

import (
	_ "embed"
	"fmt"
)

//go:embed fallback.json
var fallbackDocument []byte

// Fallback returns the built-in sample report shown when the fixture cannot
// be loaded. Each call decodes a fresh copy so callers may mutate it.
func Fallback() *ProductReport {
	r, err := Decode(fallbackDocument)
	if err != nil {
		panic(fmt.Sprintf("report: embedded fallback document: %v", err))
	}
	return r
}
