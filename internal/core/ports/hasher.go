package ports

// Hasher computes content hashes of files.
type Hasher interface {
	// ComputeFileHash computes the content hash of a single file.
	ComputeFileHash(path string) (uint64, error)
}

// InputResolver expands input glob patterns into concrete file paths.
type InputResolver interface {
	// ResolvePattern expands one pattern relative to dir. A pattern without
	// glob metacharacters resolves to itself when the path exists. Zero
	// matches is a valid result, not an error.
	ResolvePattern(dir, pattern string) ([]string, error)
}
