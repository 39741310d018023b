package stoplist

import "sort"

// Vietnamese is the base stopword list used when no stoplist file is given.
var Vietnamese = []string{
	"là", "của", "và", "các", "những", "trong", "với", "cho", "người", "được",
	"khi", "đã", "sẽ", "đang", "về", "ở", "làm", "ra", "này", "cũng", "đến",
	"từ", "có", "không", "như", "để", "một", "nhiều", "theo", "nhưng", "bị",
	"vì", "tại", "vào", "do", "lên", "xuống", "trên", "dưới", "ngày", "tháng", "năm",
	"rằng", "thì", "mà",
}

// Manager tracks the stopword list and why each entry is on it.
type Manager struct {
	stops map[string]Reason
}

// Reason explains why a token is a stopword
type Reason struct {
	Base      bool    // from the configured list
	HighDF    bool    // dropped by the vocabulary's max document frequency
	DFPercent float64 // share of documents containing the token
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]Reason, len(initialStops))
	for _, s := range initialStops {
		stops[s] = Reason{Base: true}
	}
	return &Manager{stops: stops}
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	_, ok := m.stops[token]
	return ok
}

// Add adds a token to the stoplist with a reason
func (m *Manager) Add(token string, reason Reason) {
	m.stops[token] = reason
}

// Remove removes a token from the stoplist
func (m *Manager) Remove(token string) {
	delete(m.stops, token)
}

// All returns all stopwords, sorted.
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Stats holds document-frequency statistics for one token.
type Stats struct {
	Token     string
	DF        int64
	DFPercent float64
}

// Candidate represents a candidate stopword
type Candidate struct {
	Token  string
	Reason Reason
	Score  float64 // DF share in [0,1]
}

// Thresholds defines criteria for stopword identification
type Thresholds struct {
	DFPercent float64 // e.g. 90 - appears in more than 90% of documents
}

// DefaultThresholds mirrors the vocabulary's default max_df of 0.9.
func DefaultThresholds() Thresholds {
	return Thresholds{DFPercent: 90}
}

// SuggestCandidates returns tokens that are not yet stopwords but occur in
// more than thresholds.DFPercent of documents, highest share first.
func (m *Manager) SuggestCandidates(stats []Stats, thresholds Thresholds) []Candidate {
	if thresholds.DFPercent <= 0 {
		thresholds = DefaultThresholds()
	}

	var candidates []Candidate
	for _, s := range stats {
		if m.IsStop(s.Token) {
			continue
		}
		if s.DFPercent <= thresholds.DFPercent {
			continue
		}
		candidates = append(candidates, Candidate{
			Token:  s.Token,
			Reason: Reason{HighDF: true, DFPercent: s.DFPercent},
			Score:  s.DFPercent / 100.0,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Token < candidates[j].Token
	})
	return candidates
}
