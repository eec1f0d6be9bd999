package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Session/episode state.
	ErrBadAction   = "E_BAD_ACTION"
	ErrEpisodeDone = "E_EPISODE_DONE"
	ErrNotReset    = "E_NOT_RESET"
	ErrBadFeedback = "E_BAD_FEEDBACK"
	ErrInternal    = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadAction:       {},
	ErrEpisodeDone:     {},
	ErrNotReset:        {},
	ErrBadFeedback:     {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
