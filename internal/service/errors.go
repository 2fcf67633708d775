package service

import "errors"

var (
	ErrSessionNotFound = errors.New("no open session for document")
	ErrNoProvider      = errors.New("no annotation provider configured")
)
