package service

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateName  = errors.New("player name already registered")
	ErrInvalidName    = errors.New("player name is required")
	ErrInvalidPlayers = errors.New("a match needs two distinct existing players")
	ErrPlayerNotFound = errors.New("player not found")
	ErrMatchNotFound  = errors.New("match not found")
	ErrPersistence    = errors.New("persistence failure")
)

// PersistenceError reports a failed durable-store call.
// It matches ErrPersistence under errors.Is.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
