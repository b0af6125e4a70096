package domain

// ScoreDetail holds the three quality dimensions, each clamped to [0,100].
type ScoreDetail struct {
	Specificity    int `json:"specificity"`
	Structure      int `json:"structure"`
	Persuasiveness int `json:"persuasiveness"`
}

// Overall returns the rounded mean of the three dimensions.
func (d ScoreDetail) Overall() int {
	return int(float64(d.Specificity+d.Structure+d.Persuasiveness)/3.0 + 0.5)
}

// EvaluationResult is the outcome of scoring a single answer.
// Produced fresh per answer and never mutated afterwards.
type EvaluationResult struct {
	Score        int         `json:"score"`
	ScoreDetail  ScoreDetail `json:"scoreDetail"`
	Feedback     string      `json:"feedback"`
	Improvements []string    `json:"improvements"`
	XpEarned     int         `json:"xpEarned"`
}

// EvaluationRequest carries everything needed to score one answer.
type EvaluationRequest struct {
	Question   string
	Answer     string
	Method     string
	Mode       string
	Difficulty int
}
