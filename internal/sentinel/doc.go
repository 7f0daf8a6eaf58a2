// Package sentinel provides a string-backed error type that can be declared
// as a const.
//
// procctl reports every caller-visible failure kind (invalid target,
// undeterminable identity, unavailable lock location, contention) as one of
// these constants so that callers match them with errors.Is through any
// amount of fmt.Errorf wrapping, and so that no package can reassign them.
package sentinel
