// Package storedefs contains definitions of the store API.
//
// It is a separate package so that packages that only depend on the store API
// does not need to depend on the concrete implementation.
package storedefs

import (
	"errors"
	"time"
)

// ErrNoGraph is returned when a stored graph does not exist.
var ErrNoGraph = errors.New("no such graph")

// Store is an interface satisfied by the storage service.
type Store interface {
	// Put saves the source of a graph document under a name, replacing any
	// previous graph of that name. digest identifies the content.
	Put(name, source, digest string) (Graph, error)
	Get(name string) (Graph, error)
	Delete(name string) error
	// Graphs returns all stored graphs sorted by name.
	Graphs() ([]Graph, error)
	// Named returns the names of the graphs with the given digest, sorted.
	Named(digest string) ([]string, error)
}

// Graph is a stored graph document.
type Graph struct {
	Name   string    `cbor:"-"`
	Digest string    `cbor:"1,keyasint"`
	Source string    `cbor:"2,keyasint"`
	Saved  time.Time `cbor:"3,keyasint"`
}
