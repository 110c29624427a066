package binding

import (
	"errors"
	"fmt"
	"go/token"
)

var (
	ErrBadDirective       = errors.New("malformed binding directive")
	ErrMisplacedDirective = errors.New("binding directive is not attached to a top-level function")
	ErrSignature          = errors.New("invalid signature")
	ErrNotDivergent       = errors.New("entry function may return")
	ErrNoEntry            = errors.New("no entry function")
	ErrDuplicateEntry     = errors.New("multiple entry functions")
	ErrDuplicatePreInit   = errors.New("multiple pre-init hooks")
	ErrDuplicateDefault   = errors.New("multiple default handlers")
	ErrUnknownInterrupt   = errors.New("unknown interrupt")
	ErrDuplicateInterrupt = errors.New("interrupt bound twice")
	ErrConflictingRoles   = errors.New("function claims more than one role")
	ErrPreInitGlobal      = errors.New("pre-init hook references static storage")
	ErrTokenEscape        = errors.New("critical section token escapes its scope")
)

// Error is a binding error at a source position.
type Error struct {
	Pos token.Position
	Err error
	Msg string
}

func (e *Error) Error() string {
	if len(e.Msg) == 0 {
		return fmt.Sprintf("%s: %v", e.Pos, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Pos, e.Err, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}
