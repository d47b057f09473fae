package ir

import (
	"tlog.app/go/errors"
)

var (
	ErrNoInsertionPoint   = errors.New("no insertion point set")
	ErrInvalidPhiOperand  = errors.New("invalid phi operand")
	ErrInvariantViolation = errors.New("invariant violation")
)
