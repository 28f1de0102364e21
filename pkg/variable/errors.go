package variable

import "errors"

// ErrDropped is the panic value when a mutating operation is called on a
// variable after Drop. Continued use of a dropped variable is a programming
// error, not a recoverable condition, so the core fails loudly instead of
// silently corrupting state.
var ErrDropped = errors.New("astal: variable used after drop")

// ErrBadInterval is the panic value when a poll is started with a
// non-positive interval.
var ErrBadInterval = errors.New("astal: poll interval must be positive")

// ErrNoTransform is reported through the error handler when a command
// driver has no transform and the variable's type cannot hold the raw
// command output.
var ErrNoTransform = errors.New("astal: command output needs a transform for this variable type")
