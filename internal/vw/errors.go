package vw

import "errors"

var (
	// ErrInsufficientFunds is returned when a debit exceeds the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAllowanceExhausted is returned when no offline moves or card uses remain.
	ErrAllowanceExhausted = errors.New("allowance exhausted")

	// ErrOnCooldown is returned when a move is not yet eligible.
	ErrOnCooldown = errors.New("on cooldown")

	// ErrInvalidTarget is returned when the target is missing or does not match
	// the targeting rule of the move.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrTimeZoneResolution is fatal: the day boundary cannot be computed.
	ErrTimeZoneResolution = errors.New("time zone resolution failure")

	ErrVersionConflict  = errors.New("version conflict")
	ErrNotFound         = errors.New("not found")
	ErrLocked           = errors.New("locked")
	ErrNothingToRestore = errors.New("nothing to restore")
	ErrMaxLevel         = errors.New("already at max level")
)
