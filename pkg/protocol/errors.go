package protocol

import "errors"

var (
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrOpcodeMismatch is returned when a reply does not echo the opcode of
	// the request it answers
	ErrOpcodeMismatch = errors.New("reply opcode mismatch")
	ErrShortReply     = errors.New("reply too short")
)
