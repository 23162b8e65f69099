// Package led holds the output sinks a frame can be written to.
package led

import (
	"fmt"

	"go.uber.org/multierr"
)

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes an RGB frame to hardware. len(rgb) must be 3*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}

// Multi writes every frame to all of its drivers. A failing driver does not
// stop the others; the errors are combined.
type Multi []Driver

func (m Multi) Write(rgb []byte) error {
	var err error
	for i, d := range m {
		if werr := d.Write(rgb); werr != nil {
			err = multierr.Append(err, fmt.Errorf("sink %d: %w", i, werr))
		}
	}
	return err
}

func (m Multi) Close() error {
	var err error
	for _, d := range m {
		err = multierr.Append(err, d.Close())
	}
	return err
}

// Join returns the single driver when only one is non-nil, and a Multi
// otherwise.
func Join(ds ...Driver) Driver {
	var out Multi
	for _, d := range ds {
		if d != nil {
			out = append(out, d)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}
