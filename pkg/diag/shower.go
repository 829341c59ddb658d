// Package diag contains building blocks for formatting and showing errors
// tied to a position in a source document.
package diag

// Shower wraps the Show function.
type Shower interface {
	// Show takes an indentation string and shows.
	Show(indent string) string
}
