package errors

// Error codes used in diagnostics and documentation.
//
// Error code ranges:
// E0001-E0099: OIR conversion errors
// E0100-E0199: Parse errors
const (
	// E0001: a nominal type name has no declaration in the module
	ErrorUnknownNominal = "E0001"

	// E0002: an instruction references a value that was never bound
	ErrorUndefinedValue = "E0002"

	// E0003: a value name is bound more than once
	ErrorRedefinedValue = "E0003"

	// E0004: a terminator targets a block label that does not exist
	ErrorUnknownBlock = "E0004"

	// E0005: a generic type is instantiated with the wrong number of
	// arguments
	ErrorArityMismatch = "E0005"

	// E0006 is retired; unknown type names report E0001.

	// E0007: an operand has the wrong shape for its instruction
	// (e.g. load from a non-address value)
	ErrorOperandMismatch = "E0007"

	// E0100: the file does not parse
	ErrorParse = "E0100"
)
