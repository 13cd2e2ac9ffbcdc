package game

import "errors"

// Errors returned on an attempted action. They never change state: the
// acting seat's inventory and the shell queue are exactly as they were.
var (
	ErrItemAbsent          = errors.New("item not in inventory")
	ErrDoubleSaw           = errors.New("shotgun already sawn")
	ErrDoubleStun          = errors.New("target already stunned")
	ErrInvalidStunTarget   = errors.New("invalid stun target")
	ErrBadAdrenalineTarget = errors.New("bad adrenaline target")
	ErrInvalidShotTarget   = errors.New("invalid shot target")
	ErrInvalidDecision     = errors.New("invalid decision")
)

// Errors returned by the match orchestrator.
var (
	ErrMatchOver     = errors.New("match is over")
	ErrDuplicateWin  = errors.New("round already has a winner")
	ErrUnknownPlayer = errors.New("unknown player")
)
