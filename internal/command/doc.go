// Package command runs an external command synchronously in the foreground,
// forwarding its combined output to the procctl logger line by line.
package command
