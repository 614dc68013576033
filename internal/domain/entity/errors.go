package entity

import "errors"

var (
	ErrHabitNotFound    = errors.New("habit not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidInput     = errors.New("invalid input")
	ErrAlreadyFriends   = errors.New("user is already a friend")
	ErrSelfFriend       = errors.New("cannot add yourself as a friend")
	ErrGenerationFailed = errors.New("generation failed")
	ErrConflict         = errors.New("record was modified concurrently")
)
