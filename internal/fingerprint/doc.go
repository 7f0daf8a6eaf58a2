// Package fingerprint derives a stable identity for a Go function and hashes
// it into a lock file name.
//
// A fingerprint combines the file that defines the function, its fully
// qualified name, and its parameter and result types. Moving, renaming, or
// changing the signature of a function therefore yields a different
// fingerprint, so two builds of a program that disagree about a function's
// shape never contend for the same lock.
package fingerprint
