package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInput        = errors.New("invalid input")
	ErrBadSignature = errors.New("invalid signature")
)
