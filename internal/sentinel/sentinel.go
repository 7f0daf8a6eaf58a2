package sentinel

var _ error = Error("")

// Error is an immutable error value backed by a string. Two Error values are
// equal when their text is equal, which is what errors.Is compares.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}
