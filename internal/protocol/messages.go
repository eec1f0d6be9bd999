package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AgentName       string `json:"agent_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	SessionID       string        `json:"session_id"`
	EnvParams       EnvParams     `json:"env_params"`
	Tasks           TaskManifest  `json:"tasks"`
	Palette         PaletteDigest `json:"palette"`
}

type EnvParams struct {
	Area          [2]int  `json:"area"`
	ObsRadius     int     `json:"obs_radius"`
	DayLength     int     `json:"day_length"`
	EpisodeLength int     `json:"episode_length"`
	TaskTimeout   int     `json:"task_timeout_steps"`
	CarryOverProb float64 `json:"carry_over_prob"`
	Seed          int64   `json:"seed"`
}

// TaskManifest pins the client to the server's task space: the encoding
// width fixes the observation shape and the digest detects synonym-file
// drift between runs.
type TaskManifest struct {
	Count         int      `json:"count"`
	DummySlots    int      `json:"dummy_slots"`
	EncodingWidth int      `json:"encoding_width"`
	SynonymDigest string   `json:"synonym_digest"`
	Actions       []string `json:"actions"`
}

type PaletteDigest struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// RESET (client -> server)
type ResetMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Mode            string `json:"mode,omitempty"` // "train" (default) or "eval"
}

// OBS (server -> client): the reply to RESET and to every ACT.
type ObsMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Episode         int    `json:"episode"`
	Step            int    `json:"step"`

	View    ViewObs `json:"view"`
	TaskEnc []uint8 `json:"task_enc"`
	Self    SelfObs `json:"self"`

	Inventory map[string]int `json:"inventory"`

	Reward float64 `json:"reward"`
	Done   bool    `json:"done"`

	GivenAchs  map[string]int `json:"given_achs,omitempty"`
	FollowAchs map[string]int `json:"follow_achs,omitempty"`
}

type ViewObs struct {
	Side     int    `json:"side"`
	Encoding string `json:"encoding"` // always "RLE"
	Data     string `json:"data"`
}

type SelfObs struct {
	Pos      [2]int `json:"pos"`
	Facing   [2]int `json:"facing"`
	HP       int    `json:"hp"`
	Food     int    `json:"food"`
	Drink    int    `json:"drink"`
	Energy   int    `json:"energy"`
	Sleeping bool   `json:"sleeping"`
}

// ACT (client -> server)
type ActMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Action          string `json:"action"`
}

// FEEDBACK (client -> server): per-task success rates computed by an
// external evaluation loop, one value per real task in manifest order.
type FeedbackMsg struct {
	Type             string    `json:"type"`
	ProtocolVersion  string    `json:"protocol_version"`
	TaskSuccessRates []float64 `json:"task_success_rates"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
