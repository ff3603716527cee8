package domain

// LockFile is the resolved, persisted record of exact package versions per
// environment. The task engine only consumes its identity: the content digest
// participates in cache fingerprints so that re-solving an environment
// invalidates task results.
type LockFile struct {
	// Path is the on-disk location of the lock file.
	Path string
	// Digest is a hash of the lock file content. Empty when no lock file
	// exists yet.
	Digest string
}

// CacheRecord is the persisted outcome of one task execution: the fingerprint
// of everything that influenced it. It is read once before a run and written
// once strictly after a successful, non-dry-run execution.
type CacheRecord struct {
	TaskName    string `json:"task_name"`
	Environment string `json:"environment"`
	Fingerprint string `json:"fingerprint"`
	UpdatedAt   int64  `json:"updated_at,omitzero"`
}
