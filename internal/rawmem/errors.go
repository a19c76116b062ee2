package rawmem

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind indicates a backend name that is not one of Kinds().
var ErrUnknownKind = errors.New("rawmem: unknown allocator kind")

// KindError reports an unsupported backend name.
type KindError struct {
	Name string
}

func (e *KindError) Error() string {
	names := make([]string, 0, len(Kinds()))
	for _, k := range Kinds() {
		names = append(names, string(k))
	}
	return fmt.Sprintf("rawmem: unknown allocator kind %q (want one of %s)", e.Name, strings.Join(names, ", "))
}

func (e *KindError) Unwrap() error { return ErrUnknownKind }
