package fingerprint

// SetExecutableForTesting replaces the executable lookup used when a source
// file is not on disk and returns a function restoring the original.
func SetExecutableForTesting(fn func() (string, error)) (restore func()) {
	prev := executable
	executable = fn
	return func() { executable = prev }
}

// ResolveModuleForTesting exposes resolveModule.
func ResolveModuleForTesting(file string) (string, error) { return resolveModule(file) }
