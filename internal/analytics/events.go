package analytics

import "time"

// Outcome classifies how a recommendation query ended.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeNoSimilarUsers Outcome = "no_similar_users"
	OutcomeInvalid        Outcome = "invalid"
	OutcomeError          Outcome = "error"
)

// QueryEvent describes one served recommendation query. Key is the title
// for ratings and genre queries and the decimal user id for user queries.
type QueryEvent struct {
	Kind      string    `json:"kind"`
	Key       string    `json:"key"`
	N         int       `json:"n"`
	Outcome   Outcome   `json:"outcome"`
	Returned  int       `json:"returned"`
	LatencyUs int64     `json:"latency_us"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}
