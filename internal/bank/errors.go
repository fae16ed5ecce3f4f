package bank

import "fmt"

// StatementParseError means the whole file cannot be interpreted: required
// statement-level metadata is missing, no text could be extracted, the
// XML/CSV structure is invalid, or no adapter recognizes the format.
type StatementParseError struct {
	Bank   string
	Reason string
	Err    error
}

func (e *StatementParseError) Error() string {
	if e.Bank == "" {
		return fmt.Sprintf("statement parse failed: %s", e.Reason)
	}
	return fmt.Sprintf("%s: statement parse failed: %s", e.Bank, e.Reason)
}

func (e *StatementParseError) Unwrap() error { return e.Err }

// ParseError is a recoverable, per-block failure: one transaction block
// could not be extracted. The caller logs it and keeps the rest.
type ParseError struct {
	Bank   string
	Block  int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: block %d: %s", e.Bank, e.Block, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }
