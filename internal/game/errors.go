package game

import "github.com/yallagames/kedhba/internal/protocol"

// GameError carries a protocol error code so handlers can answer the
// offending client without touching room state.
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func newError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

var (
	ErrRoomNotFound = newError(protocol.ErrCodeRoomNotFound)
	ErrRoomFull     = newError(protocol.ErrCodeRoomFull)
	ErrGameStarted  = newError(protocol.ErrCodeGameStarted)
	ErrNotInRoom    = newError(protocol.ErrCodeNotInRoom)

	ErrNotHost      = newError(protocol.ErrCodeNotHost)
	ErrNotChooser   = newError(protocol.ErrCodeNotChooser)
	ErrWrongPhase   = newError(protocol.ErrCodeWrongPhase)
	ErrAlreadyDone  = newError(protocol.ErrCodeAlreadyDone)
	ErrSelfVote     = newError(protocol.ErrCodeSelfVote)
	ErrNotEnough    = newError(protocol.ErrCodeNotEnough)
	ErrTruthWritten = newError(protocol.ErrCodeTruthWritten)
	ErrLieTaken     = newError(protocol.ErrCodeLieTaken)
	ErrBadSelection = newError(protocol.ErrCodeBadSelection)
)
