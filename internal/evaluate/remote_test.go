package evaluate

import (
	"context"
	"errors"
	"testing"

	"github.com/hanatore/api/internal/domain"
)

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) GenerateText(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

func TestRemoteEvaluatorFencedJSON(t *testing.T) {
	gen := &fakeGenerator{text: "採点しました。\n```json\n" +
		`{"specificity": 80, "structure": 90, "persuasiveness": 70, "feedback": "良いです", "improvements": ["a", "b"]}` +
		"\n```\n以上です。"}
	r := NewRemoteEvaluator(gen)

	result, err := r.Evaluate(context.Background(), domain.EvaluationRequest{Difficulty: 1})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if result.ScoreDetail != (domain.ScoreDetail{Specificity: 80, Structure: 90, Persuasiveness: 70}) {
		t.Errorf("scoreDetail = %+v", result.ScoreDetail)
	}
	if result.Score != 80 {
		t.Errorf("score = %d, want 80", result.Score)
	}
	if result.Feedback != "良いです" {
		t.Errorf("feedback = %q", result.Feedback)
	}
	if result.XpEarned != CalculateXP(80, 1) {
		t.Errorf("xpEarned = %d, want %d", result.XpEarned, CalculateXP(80, 1))
	}
}

func TestRemoteEvaluatorBareJSON(t *testing.T) {
	gen := &fakeGenerator{text: `{"specificity": 10, "structure": 20, "persuasiveness": 30, "feedback": "f"}`}
	r := NewRemoteEvaluator(gen)

	result, err := r.Evaluate(context.Background(), domain.EvaluationRequest{})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if result.Score != 20 {
		t.Errorf("score = %d, want 20", result.Score)
	}
}

func TestRemoteEvaluatorStripsResidualFences(t *testing.T) {
	// Unterminated fence: the block regex cannot match, the raw body is
	// not JSON, but stripping the markers leaves a parseable object.
	gen := &fakeGenerator{text: "```json\n" +
		`{"specificity": 50, "structure": 50, "persuasiveness": 50, "feedback": "f"}`}
	r := NewRemoteEvaluator(gen)

	result, err := r.Evaluate(context.Background(), domain.EvaluationRequest{})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if result.Score != 50 {
		t.Errorf("score = %d, want 50", result.Score)
	}
}

func TestRemoteEvaluatorClampsAndRecomputesScore(t *testing.T) {
	// Out-of-range dimensions and a bogus overall score in the payload.
	gen := &fakeGenerator{text: `{"specificity": 150, "structure": -20, "persuasiveness": 60, "feedback": "f", "score": 3, "improvements": ["a","b","c","d"]}`}
	r := NewRemoteEvaluator(gen)

	result, err := r.Evaluate(context.Background(), domain.EvaluationRequest{})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	want := domain.ScoreDetail{Specificity: 100, Structure: 0, Persuasiveness: 60}
	if result.ScoreDetail != want {
		t.Errorf("scoreDetail = %+v, want %+v", result.ScoreDetail, want)
	}
	if result.Score != want.Overall() {
		t.Errorf("score = %d, want recomputed %d", result.Score, want.Overall())
	}
	if len(result.Improvements) != 3 {
		t.Errorf("improvements = %d entries, want truncation to 3", len(result.Improvements))
	}
}

func TestRemoteEvaluatorErrors(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"backend failure", &fakeGenerator{err: errors.New("boom")}},
		{"not JSON at all", &fakeGenerator{text: "すみません、採点できません。"}},
		{"missing dimension", &fakeGenerator{text: `{"specificity": 80, "structure": 90, "feedback": "f"}`}},
		{"missing feedback", &fakeGenerator{text: `{"specificity": 80, "structure": 90, "persuasiveness": 70}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRemoteEvaluator(tt.gen)
			if _, err := r.Evaluate(context.Background(), domain.EvaluationRequest{}); err == nil {
				t.Fatal("Evaluate succeeded, want error")
			}
		})
	}
}

func TestGatewayFallbackTotality(t *testing.T) {
	failing := NewRemoteEvaluator(&fakeGenerator{err: errors.New("unreachable")})
	g := NewGateway(failing, NewHeuristic(DefaultLexicons()))

	for _, answer := range []string{"", "短い", "結論として、売上は30パーセント伸びました。なぜなら新しい施策が機能したからです。"} {
		result := g.Evaluate(context.Background(), domain.EvaluationRequest{Answer: answer, Method: "PREP", Difficulty: 2})
		if result.Score < 0 || result.Score > 100 {
			t.Errorf("score = %d for %q, want within [0,100]", result.Score, answer)
		}
		if result.Feedback == "" {
			t.Errorf("no feedback for %q", answer)
		}
	}
}

func TestGatewayWithoutRemote(t *testing.T) {
	g := NewGateway(nil, NewHeuristic(DefaultLexicons()))
	result := g.Evaluate(context.Background(), domain.EvaluationRequest{Answer: "テスト"})
	if result.Feedback == "" {
		t.Error("heuristic-only gateway returned no feedback")
	}
}

func TestGatewayPrefersRemote(t *testing.T) {
	remote := NewRemoteEvaluator(&fakeGenerator{text: `{"specificity": 90, "structure": 90, "persuasiveness": 90, "feedback": "remote"}`})
	g := NewGateway(remote, NewHeuristic(DefaultLexicons()))

	result := g.Evaluate(context.Background(), domain.EvaluationRequest{Answer: "テスト"})
	if result.Feedback != "remote" {
		t.Errorf("feedback = %q, want remote result", result.Feedback)
	}
}
