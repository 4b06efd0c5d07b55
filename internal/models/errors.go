package models

import "errors"

var (
	ErrInvalidAction  = errors.New("invalid catalog action")
	ErrPageOutOfRange = errors.New("page out of range")
	ErrNoSource       = errors.New("no product source configured")
)
