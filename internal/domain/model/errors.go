//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "errors"

// Sentinel errors shared by repositories and services.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrClubNotFound         = errors.New("club not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyRegistered    = errors.New("already registered for this event")
	ErrNotCoordinator       = errors.New("only club leads can create events")
)
