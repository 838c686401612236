package analysis

import "github.com/riskibarqy/betslip-analyzer/internal/domain/match"

// SelectionThreshold is the minimum confidence for a match to enter the
// recommended selections.
const SelectionThreshold = 70

// Market identifiers for per-match predictions.
const (
	MarketResult    = "result"
	MarketBTTS      = "btts"
	MarketOverUnder = "over_under_2_5"
)

// Prediction is the scorer's verdict for one match.
type Prediction struct {
	MatchKey   string             `json:"match_key"`
	HomeTeam   string             `json:"home_team"`
	AwayTeam   string             `json:"away_team"`
	Markets    map[string]Market  `json:"markets"`
	Confidence int                `json:"confidence"`
	Degraded   bool               `json:"degraded"`
	Signals    map[string]float64 `json:"signals,omitempty"`
}

// Market carries the chosen outcome and its probability split.
type Market struct {
	Pick          string             `json:"pick"`
	Odds          float64            `json:"odds,omitempty"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
}

// Selection is one recommended match bet.
type Selection struct {
	Match      match.Detected `json:"match"`
	MarketName string         `json:"market"`
	Pick       string         `json:"pick"`
	Odds       float64        `json:"odds"`
	Confidence int            `json:"confidence"`
}

// Final is the immutable outcome of one analysis request.
type Final struct {
	Selections        []Selection  `json:"selections"`
	Predictions       []Prediction `json:"per_match_predictions"`
	TotalOdds         float64      `json:"total_odds"`
	OverallConfidence float64      `json:"overall_confidence"`
	Recommendations   []string     `json:"recommendations"`
}
