package domain

import "errors"

var (
	ErrInvalidLimit  = errors.New("invalid limit")
	ErrInvalidWindow = errors.New("invalid time window")
)
