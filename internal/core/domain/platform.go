package domain

// Platform describes runtime capabilities, decided once by the entry point
// and injected. Business logic never probes the environment ad hoc.
type Platform struct {
	// HasFilesystem reports whether file_path uploads can read local
	// files. False in sandboxed runtimes, where callers must send file
	// bytes instead.
	HasFilesystem bool
}
