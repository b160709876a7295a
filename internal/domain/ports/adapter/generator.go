package adapter

// CodeGenerator produces random codes over the service's fixed alphabet.
type CodeGenerator interface {
	// Generate returns a single random code of exactly length symbols.
	Generate(length int) (string, error)

	// GenerateBatch returns count case-insensitively distinct codes of the
	// given length. Pure CPU, no I/O.
	GenerateBatch(count, length int) ([]string, error)
}
