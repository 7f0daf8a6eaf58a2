package exithook

// SetOSExitForTesting replaces os.Exit and returns a restore function.
func SetOSExitForTesting(fn func(int)) (restore func()) {
	prev := osExit
	osExit = fn
	return func() { osExit = prev }
}
