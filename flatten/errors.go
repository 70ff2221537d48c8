package flatten

import (
	"errors"
	"strings"
)

// ErrCyclicInclude is matched by errors.Is for every *CycleError.
var ErrCyclicInclude = errors.New("cyclic include")

// CycleError reports an include chain that leads back to a file which is
// still being resolved. Chain starts at the root file and ends with the
// repeated file.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return "cyclic include: " + strings.Join(e.Chain, " -> ")
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCyclicInclude
}
