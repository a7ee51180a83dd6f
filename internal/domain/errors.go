package domain

import "errors"

var (
	// ErrNoData marks a transient external-data failure already recovered
	// locally; callers skip the dependent step instead of propagating.
	ErrNoData = errors.New("no data")

	// ErrPositionOpen rejects a second entry for a mint that already has an
	// open position. Never averaged in.
	ErrPositionOpen = errors.New("position already open")

	ErrBlacklisted = errors.New("blacklisted")
	ErrGateReject  = errors.New("risk gate rejected")
)
