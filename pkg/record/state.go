package record

import "fmt"

// FetchState classifies how completely a local record reflects its
// remote counterpart.
type FetchState string

const (
	// StateUnfetched means only the identity is known. A bare pointer.
	StateUnfetched FetchState = "unfetched"
	// StateSelective means a known subset of fields is materialized.
	// Fields outside the known set are unknown, not null.
	StateSelective FetchState = "selective"
	// StateFull means every declared field is materialized (or
	// explicitly null).
	StateFull FetchState = "full"
)

// transitions holds the legal fetch-state moves. A record never becomes
// less fetched than it already is.
var transitions = map[FetchState]map[FetchState]struct{}{
	StateUnfetched: {
		StateSelective: {},
		StateFull:      {},
	},
	StateSelective: {
		StateSelective: {},
		StateFull:      {},
	},
	StateFull: {
		StateFull: {},
	},
}

func (s FetchState) CanTransition(to FetchState) bool {
	if _, ok := transitions[s][to]; ok {
		return true
	}
	return false
}

func (s FetchState) transition(to FetchState) (FetchState, error) {
	if !s.CanTransition(to) {
		return s, fmt.Errorf("invalid fetch state transition from %s to %s", s, to)
	}
	return to, nil
}
