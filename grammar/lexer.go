package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var OIRLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{Name: "Comment", Pattern: `//[^\n]*`, Action: nil},

		// SSA value references (%0, %12, ...)
		{Name: "Value", Pattern: `%[0-9]+`, Action: nil},

		// Function symbols (@fileHandleDeinit)
		{Name: "Symbol", Pattern: `@[a-zA-Z_][a-zA-Z0-9_.$]*`, Action: nil},

		// Keywords, opcodes, type names, block labels
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`, Action: nil},

		// Punctuation
		{Name: "Punctuation", Pattern: `[{}()[\]<>,:*=]`, Action: nil},

		// Whitespace
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`, Action: nil},
	},
})
