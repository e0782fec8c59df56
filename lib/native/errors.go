package native

import (
	"fmt"

	"github.com/DamirAinullin/ManagedEsent/lib/engine"
)

// VersionError reports a structure whose size field names no variant the
// converter knows.
type VersionError struct {
	Struct string
	Size   uint32
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("native: %s: unsupported structure size %d", e.Struct, e.Size)
}

func (e *VersionError) Unwrap() error { return engine.ErrUnsupportedVersion }
