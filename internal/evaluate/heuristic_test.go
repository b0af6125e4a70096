package evaluate

import (
	"context"
	"strings"
	"testing"

	"github.com/hanatore/api/internal/domain"
)

func scoreOf(t *testing.T, req domain.EvaluationRequest) domain.EvaluationResult {
	t.Helper()
	h := NewHeuristic(DefaultLexicons())
	result, err := h.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	return result
}

func assertWellFormed(t *testing.T, r domain.EvaluationResult) {
	t.Helper()
	for name, v := range map[string]int{
		"score":          r.Score,
		"specificity":    r.ScoreDetail.Specificity,
		"structure":      r.ScoreDetail.Structure,
		"persuasiveness": r.ScoreDetail.Persuasiveness,
	} {
		if v < 0 || v > 100 {
			t.Errorf("%s = %d, want within [0,100]", name, v)
		}
	}
	if got, want := r.Score, r.ScoreDetail.Overall(); got != want {
		t.Errorf("score = %d, want rounded mean %d", got, want)
	}
	if r.Feedback == "" {
		t.Error("feedback is empty")
	}
	if len(r.Improvements) > 3 {
		t.Errorf("improvements = %d entries, want at most 3", len(r.Improvements))
	}
	if r.XpEarned < 0 {
		t.Errorf("xpEarned = %d, want non-negative", r.XpEarned)
	}
}

func TestHeuristicEmptyAnswerScoresLow(t *testing.T) {
	result := scoreOf(t, domain.EvaluationRequest{Answer: ""})
	assertWellFormed(t, result)
	if result.Score > 30 {
		t.Errorf("empty answer score = %d, want <= 30", result.Score)
	}
	if result.XpEarned != 0 {
		t.Errorf("empty answer xp = %d, want 0", result.XpEarned)
	}
}

func TestHeuristicMethodBonus(t *testing.T) {
	answer := "結論として" + strings.Repeat("あ", 150)
	plain := scoreOf(t, domain.EvaluationRequest{Answer: answer})
	structured := scoreOf(t, domain.EvaluationRequest{Answer: answer, Method: "PREP"})

	if structured.ScoreDetail.Structure <= plain.ScoreDetail.Structure {
		t.Errorf("structure with PREP keyword = %d, want > %d",
			structured.ScoreDetail.Structure, plain.ScoreDetail.Structure)
	}

	// An unknown method never grants the bonus, whatever the text says.
	unknown := scoreOf(t, domain.EvaluationRequest{Answer: answer, Method: "XYZ"})
	if unknown.ScoreDetail.Structure != plain.ScoreDetail.Structure {
		t.Errorf("structure with unknown method = %d, want %d",
			unknown.ScoreDetail.Structure, plain.ScoreDetail.Structure)
	}
}

func TestHeuristicNumberBonus(t *testing.T) {
	filler := strings.Repeat("あ", 100)
	plain := scoreOf(t, domain.EvaluationRequest{Answer: filler})
	ascii := scoreOf(t, domain.EvaluationRequest{Answer: "売上は30件。" + filler})
	wide := scoreOf(t, domain.EvaluationRequest{Answer: "売上は３０件。" + filler})

	if ascii.ScoreDetail.Specificity <= plain.ScoreDetail.Specificity {
		t.Error("ASCII digits did not raise specificity")
	}
	if wide.ScoreDetail.Specificity <= plain.ScoreDetail.Specificity {
		t.Error("full-width digits did not raise specificity")
	}
}

func TestHeuristicDimensionsClampAt100(t *testing.T) {
	// Long answer with every bonus triggered.
	answer := "結論として、なぜなら具体的に30パーセント" + strings.Repeat("あ", 600)
	result := scoreOf(t, domain.EvaluationRequest{Answer: answer, Method: "PREP"})
	assertWellFormed(t, result)
	if result.ScoreDetail.Specificity != 100 || result.ScoreDetail.Structure != 100 {
		t.Errorf("scoreDetail = %+v, want dimensions clamped to 100", result.ScoreDetail)
	}
}

func TestHeuristicFeedbackBands(t *testing.T) {
	tests := []struct {
		name         string
		answer       string
		method       string
		wantFeedback string
	}{
		{
			name:         "top band",
			answer:       "結論として、なぜなら具体的に30パーセント" + strings.Repeat("あ", 600),
			method:       "PREP",
			wantFeedback: "素晴らしい回答です！構造的で具体的な内容になっています。",
		},
		{
			name:         "bottom band",
			answer:       "短い",
			wantFeedback: "回答をより具体的に、構造的にすることで大きく改善できます。",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scoreOf(t, domain.EvaluationRequest{Answer: tt.answer, Method: tt.method})
			if result.Feedback != tt.wantFeedback {
				t.Errorf("feedback = %q, want %q", result.Feedback, tt.wantFeedback)
			}
		})
	}
}

func TestHeuristicBottomBandSuggestsAllThree(t *testing.T) {
	result := scoreOf(t, domain.EvaluationRequest{Answer: "短い"})
	if len(result.Improvements) != 3 {
		t.Fatalf("improvements = %v, want 3 suggestions", result.Improvements)
	}
}

func TestCalculateXP(t *testing.T) {
	tests := []struct {
		score, difficulty, want int
	}{
		{100, 1, 100},
		{100, 5, 180},
		{50, 1, 50},
		{50, 3, 70},
		{0, 5, 0},
		{73, 2, 88},  // 10 * 1.2 * 0.73 * 10 = 87.6
		{100, 0, 100}, // difficulty below range clamps to 1
		{100, 9, 180}, // difficulty above range clamps to 5
	}
	for _, tt := range tests {
		if got := CalculateXP(tt.score, tt.difficulty); got != tt.want {
			t.Errorf("CalculateXP(%d, %d) = %d, want %d", tt.score, tt.difficulty, got, tt.want)
		}
	}
}
