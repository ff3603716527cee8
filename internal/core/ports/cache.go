package ports

import "context"

// CacheKey identifies everything that influences a task's result.
type CacheKey struct {
	TaskName    string
	Environment string
	Command     string
	WorkingDir  string
	Inputs      []string
	LockDigest  string
}

// CacheDecision is the outcome of a cache check. When Skip is false it
// carries the freshly computed fingerprint for persistence after a successful
// run.
type CacheDecision struct {
	Skip        bool
	Fingerprint string
}

// CacheGate decides whether a task needs to run and persists fingerprints
// after successful executions. A cache miss is a normal "must run" outcome,
// never an error.
//
//go:generate go run go.uber.org/mock/mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type CacheGate interface {
	// Check compares the stored fingerprint against the freshly computed
	// one for the key.
	Check(ctx context.Context, key CacheKey) (CacheDecision, error)

	// Save persists the decision's fingerprint. Callers invoke it only
	// after an exit-code-zero, non-dry-run execution.
	Save(ctx context.Context, key CacheKey, decision CacheDecision) error
}
