// Package storage is the archive's object store: JSON documents addressed
// by slash-separated keys such as "authors/billy-collins.json".
package storage

import "github.com/starford/almanac/internal/models"

// Provider is the interface for object store operations. Keys are
// relative, slash-separated and must stay inside the store root.
type Provider interface {
	// List returns every .json object whose key starts with prefix.
	List(prefix string) ([]models.ObjectInfo, error)
	// Read returns the raw bytes stored under key. A missing key yields an
	// error wrapping os.ErrNotExist.
	Read(key string) ([]byte, error)
	// Write atomically replaces the object stored under key.
	Write(key string, content []byte) error
	// Delete removes the object stored under key.
	Delete(key string) error
}
