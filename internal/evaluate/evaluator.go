// Package evaluate scores free-form answers. A generative backend does
// the scoring when configured; a deterministic heuristic covers every
// failure path so callers always receive a usable result.
package evaluate

import (
	"context"
	"log/slog"

	"github.com/hanatore/api/internal/domain"
)

// Evaluator scores a single answer.
type Evaluator interface {
	Evaluate(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationResult, error)
}

// Gateway selects between the remote generative evaluator and the local
// heuristic. Evaluation never fails from the caller's perspective: any
// remote error degrades to the heuristic result for the same inputs.
type Gateway struct {
	remote Evaluator
	local  Evaluator
}

// NewGateway creates a gateway. A nil remote means the generative
// backend is not configured and the heuristic handles everything.
func NewGateway(remote, local Evaluator) *Gateway {
	return &Gateway{remote: remote, local: local}
}

// Evaluate scores the answer, falling back to the heuristic on any
// remote failure. The heuristic itself cannot fail on user input.
func (g *Gateway) Evaluate(ctx context.Context, req domain.EvaluationRequest) domain.EvaluationResult {
	if g.remote == nil {
		slog.Info("Generative backend not configured, using heuristic scorer")
		result, _ := g.local.Evaluate(ctx, req)
		return result
	}

	result, err := g.remote.Evaluate(ctx, req)
	if err != nil {
		slog.Warn("Generative evaluation failed, falling back to heuristic", "error", err)
		result, _ = g.local.Evaluate(ctx, req)
		return result
	}
	return result
}

// clamp limits v to the [0,100] score range.
func clamp(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v + 0.5)
}

// CalculateXP converts a score into experience points. Base 10, a
// difficulty multiplier from 1.0 (difficulty 1) to 1.8 (difficulty 5),
// and the normalized score as a fraction.
func CalculateXP(score, difficulty int) int {
	if difficulty < 1 {
		difficulty = 1
	}
	if difficulty > 5 {
		difficulty = 5
	}
	multiplier := 1.0 + float64(difficulty-1)*0.2
	return int(10.0*multiplier*float64(score)/100.0*10.0 + 0.5)
}
