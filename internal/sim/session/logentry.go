package session

// EpisodeLogEntry is the JSONL/index record written when an episode ends.
type EpisodeLogEntry struct {
	EpisodeID string  `json:"episode_id"`
	Mode      string  `json:"mode"`
	Seed      int64   `json:"seed"`
	Episode   int     `json:"episode"`
	Steps     int     `json:"steps"`
	Return    float64 `json:"return"`
	Died      bool    `json:"died"`
	Unlocked  int     `json:"unlocked"`

	GivenAchs  map[string]int `json:"given_achs"`
	FollowAchs map[string]int `json:"follow_achs"`
}

// LogEntry snapshots the finished (or in-flight) episode under the given id.
func (s *Session) LogEntry(episodeID string) EpisodeLogEntry {
	return EpisodeLogEntry{
		EpisodeID:  episodeID,
		Mode:       s.Mode(),
		Seed:       s.epSeed,
		Episode:    s.episode,
		Steps:      s.step,
		Return:     s.ret,
		Died:       s.world.Player().HP <= 0,
		Unlocked:   s.engine.Unlocked(),
		GivenAchs:  s.engine.Given(),
		FollowAchs: s.engine.Follow(),
	}
}
