// Package storage provides byte-level persistence for uploaded assets,
// addressed by a storage location plus a relative path. The public location
// serves files directly over HTTP; the managed location keeps them behind the
// application.
package storage

import (
	"errors"
	"fmt"
	"io"
)

// Location selects which physical root an asset lives under.
type Location string

const (
	LocationPublic  Location = "public"
	LocationManaged Location = "managed"
)

// ErrUnknownLocation marks a storage-location selector the configuration does
// not recognize. This is a configuration fault, never a user error.
var ErrUnknownLocation = errors.New("unrecognized storage location")

// Store is the byte-level contract shared by all backends.
type Store interface {
	Write(location Location, path string, data io.Reader) error
	Read(location Location, path string) (io.ReadCloser, error)
	Delete(location Location, path string) error
}

// ParseLocation validates a configured storage-location selector.
func ParseLocation(value string) (Location, error) {
	switch Location(value) {
	case LocationPublic:
		return LocationPublic, nil
	case LocationManaged:
		return LocationManaged, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLocation, value)
	}
}
