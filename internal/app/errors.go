package app

import "errors"

// Sentinel kinds for domain-rule rejections. All of these are terminal and
// user-correctable; the command layer relays them verbatim.
var (
	ErrEventNotRegistered    = errors.New("event not registered")
	ErrEventExists           = errors.New("event already exists")
	ErrDuplicateSubmission   = errors.New("duplicate submission")
	ErrPowerstageRequired    = errors.New("powerstage time required")
	ErrPowerstageNotAccepted = errors.New("powerstage time not accepted")
)
