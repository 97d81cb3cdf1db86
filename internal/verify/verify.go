// Package verify guards apply mode: a rewritten file must still parse as
// JavaScript before it is written back. Verification is a regression check.
// Sources that never parsed (TypeScript, JSX, broken input) are left to the
// best-effort path rather than rejected wholesale.
package verify

import (
	"fmt"

	"github.com/dop251/goja/parser"
)

// CheckJS parses src as a JavaScript program.
func CheckJS(name, src string) error {
	_, err := parser.ParseFile(nil, name, src, 0)
	return err
}

// Regression returns an error when before parses cleanly but after does not,
// meaning the applied edits broke previously valid syntax. When before never
// parsed there is no baseline to protect and nil is returned.
func Regression(name, before, after string) error {
	if err := CheckJS(name, before); err != nil {
		return nil
	}
	if err := CheckJS(name, after); err != nil {
		return fmt.Errorf("rewrite broke syntax: %w", err)
	}
	return nil
}
