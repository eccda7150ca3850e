package errors

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	// Keep assertions free of ANSI escapes.
	color.NoColor = true
}

func TestFormatErrorIncludesSourceContext(t *testing.T) {
	source := "module demo\n\nfn broken() {\nbb0:\n  destroy_value %9\n  return\n}\n"
	reporter := NewErrorReporter("broken.oir", source)

	formatted := reporter.FormatError(CompilerError{
		Level:    Error,
		Code:     ErrorUndefinedValue,
		Message:  "value %9 is not defined",
		Position: Position{Line: 5, Column: 17},
		Length:   2,
	})

	assert.Contains(t, formatted, "error[E0002]: value %9 is not defined")
	assert.Contains(t, formatted, "broken.oir:5:17")
	assert.Contains(t, formatted, "destroy_value %9")
	assert.Contains(t, formatted, "^^")
}

func TestFormatErrorWithoutCode(t *testing.T) {
	reporter := NewErrorReporter("x.oir", "module x\n")
	formatted := reporter.FormatError(CompilerError{
		Level:    Warning,
		Message:  "something looks off",
		Position: Position{Line: 1, Column: 1},
	})

	assert.True(t, strings.HasPrefix(formatted, "warning: something looks off"))
}

func TestFormatErrorRendersNotes(t *testing.T) {
	reporter := NewErrorReporter("x.oir", "module x\n")
	formatted := reporter.FormatError(CompilerError{
		Level:    Error,
		Code:     ErrorUnknownNominal,
		Message:  "unknown nominal type Gone",
		Position: Position{Line: 1, Column: 8},
		Notes:    []string{"nominal types must be declared before use"},
	})

	assert.Contains(t, formatted, "note: nominal types must be declared before use")
}

func TestFormatErrorOutOfRangeLine(t *testing.T) {
	reporter := NewErrorReporter("x.oir", "module x\n")
	formatted := reporter.FormatError(CompilerError{
		Level:    Error,
		Message:  "truncated input",
		Position: Position{Line: 40, Column: 1},
	})

	// No panic; still reports the location even without a source line.
	assert.Contains(t, formatted, "x.oir:40:1")
}

func TestCompilerErrorImplementsError(t *testing.T) {
	err := CompilerError{Level: Error, Code: ErrorParse, Message: "unexpected token"}
	assert.Equal(t, "error[E0100]: unexpected token", err.Error())
}
