package service

import (
	"errors"

	repository "github.com/okian/allocator/internal/adapters/repository"
)

// Service errors.
var (
	ErrNoStore       = errors.New("service: no store configured")
	ErrNotStarted    = errors.New("service: not started")
	ErrKOutOfRange   = errors.New("k out of range")
	ErrStoreDegraded = errors.New("service: store unavailable")
)

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
