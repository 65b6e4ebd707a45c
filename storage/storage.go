// Package storage provides the blob stores backing avatar originals and
// cached renditions: a local-disk store for single-host deployments and an
// S3-compatible store for object storage backends.
package storage

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks storage-layer failures so callers can distinguish them
// from validation problems via errors.Is.
var ErrUnavailable = errors.New("storage: unavailable")

// Unavailable wraps err with ErrUnavailable. Nil stays nil.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
