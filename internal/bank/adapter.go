package bank

// Adapter turns one bank's statement export into the normalized model.
// Implementations declare their bank identity as constants and must keep
// Detect cheap and panic-free: a malformed file is a "no", not an error.
type Adapter interface {
	// Code is the stable bank identifier (e.g. "GRANIT").
	Code() string
	// Name is the human-readable bank name.
	Name() string
	// BIC is the bank's SWIFT identifier.
	BIC() string

	// Detect sniffs whether this adapter understands the file. Best effort;
	// it must never panic or return an error for malformed input.
	Detect(data []byte, filename string) bool

	// Parse extracts the statement. It fails with a *StatementParseError
	// when the file as a whole cannot be interpreted; individual broken
	// transaction blocks are skipped and reported in the result instead.
	Parse(data []byte) (*ParseResult, error)
}

// ParseResult is a full extraction: statement metadata, the normalized
// transactions, and the per-block failures that were skipped. The caller
// decides how to log the skips.
type ParseResult struct {
	Metadata     *StatementMetadata
	Transactions []Transaction
	Skipped      []ParseError
}

// BankInfo identifies a supported bank.
type BankInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
	BIC  string `json:"bic"`
}
