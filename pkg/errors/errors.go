package errors

import (
	"fmt"
	"os"

	errors "github.com/cockroachdb/errors"
)

var (
	New       = errors.New
	Errorf    = errors.Errorf
	Wrap      = errors.Wrap
	Wrapf     = errors.Wrapf
	WithStack = errors.WithStack
	Is        = errors.Is
	As        = errors.As
	HasType   = errors.HasType
	UnwrapAll = errors.UnwrapAll
)

// Fatal prints err with its stack and terminates the process.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "fatal: %+v\n", err)
	os.Exit(1)
}
