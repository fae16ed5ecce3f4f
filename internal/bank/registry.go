package bank

import (
	"strings"

	"github.com/rs/zerolog"
)

// Registry holds the adapters in detection order. It is a plain value wired
// in at startup, not a package singleton, so tests can register fakes
// without touching shared state.
type Registry struct {
	adapters []Adapter
	log      zerolog.Logger
}

// NewRegistry creates a registry with all built-in adapters. The order
// matters: cheap structural sniffs (CSV, XML) run before the PDF adapters.
func NewRegistry(log zerolog.Logger) *Registry {
	r := &Registry{log: log.With().Str("component", "bank_registry").Logger()}
	for _, a := range []Adapter{
		NewRevolutAdapter(),
		NewMagnetAdapter(),
		NewGranitAdapter(),
		NewKHAdapter(),
		NewRaiffeisenAdapter(),
	} {
		r.Register(a)
	}
	return r
}

// Register adds an adapter. A duplicate bank code replaces the prior
// registration with a warning.
func (r *Registry) Register(a Adapter) {
	for i, existing := range r.adapters {
		if existing.Code() == a.Code() {
			r.log.Warn().Str("bank_code", a.Code()).Msg("replacing registered adapter")
			r.adapters[i] = a
			return
		}
	}
	r.adapters = append(r.adapters, a)
}

// Unregister removes the adapter with the given bank code. Returns false
// when no such adapter is registered.
func (r *Registry) Unregister(code string) bool {
	for i, a := range r.adapters {
		if a.Code() == code {
			r.adapters = append(r.adapters[:i], r.adapters[i+1:]...)
			return true
		}
	}
	return false
}

// GetAdapter returns the first adapter whose Detect accepts the file. A
// panic inside one adapter's Detect must not prevent trying the next, so
// each probe runs recovered.
func (r *Registry) GetAdapter(data []byte, filename string) (Adapter, error) {
	for _, a := range r.adapters {
		if r.detect(a, data, filename) {
			return a, nil
		}
	}
	names := make([]string, len(r.adapters))
	for i, a := range r.adapters {
		names[i] = a.Name()
	}
	return nil, &StatementParseError{
		Reason: "unrecognized statement format; supported banks: " + strings.Join(names, ", "),
	}
}

func (r *Registry) detect(a Adapter, data []byte, filename string) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn().Str("bank_code", a.Code()).Interface("panic", rec).Msg("adapter detection panicked")
			ok = false
		}
	}()
	return a.Detect(data, filename)
}

// ListSupportedBanks returns the identity of every registered adapter.
func (r *Registry) ListSupportedBanks() []BankInfo {
	banks := make([]BankInfo, len(r.adapters))
	for i, a := range r.adapters {
		banks[i] = BankInfo{Code: a.Code(), Name: a.Name(), BIC: a.BIC()}
	}
	return banks
}
