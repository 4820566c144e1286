package tree

import "errors"

// Errors returned (wrapped in an [OpError]) by FolderTree operations
var (
	ErrNotFound      = errors.New("folder not found")
	ErrExists        = errors.New("folder already exists")
	ErrInvalidPath   = errors.New("invalid path")
	ErrCyclicMove    = errors.New("cannot move into a destination that is inside the source")
	ErrIdenticalMove = errors.New("source and destination cannot be the same")
)

// OpError wraps an error with the operation and path it happened on
type OpError struct {
	Op   string // Operation that failed (e.g., "add", "move", "restore")
	Path string // Path or trash key the operation was given
	Err  error  // The underlying error
}

func (e *OpError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func opErr(op, path string, err error) error {
	return &OpError{Op: op, Path: path, Err: err}
}

// IsGuardRejection reports whether err is a move rejected by the cycle or
// identity guard. The tree is unchanged after such an error.
func IsGuardRejection(err error) bool {
	return errors.Is(err, ErrCyclicMove) || errors.Is(err, ErrIdenticalMove)
}
