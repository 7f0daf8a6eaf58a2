// Package logging holds the package-level slog logger shared by every procctl
// package. The root package exposes SetLogger on top of it.
package logging
