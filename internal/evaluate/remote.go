package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/hanatore/api/internal/domain"
)

// fencedJSONPattern extracts the body of a ```json fenced block.
var fencedJSONPattern = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")

// RemoteEvaluator scores answers through a generative text backend. The
// backend's output is untrusted: scores are clamped, the overall score
// is recomputed locally and improvements are truncated.
type RemoteEvaluator struct {
	gen TextGenerator
}

// NewRemoteEvaluator creates a remote evaluator over a text generator.
func NewRemoteEvaluator(gen TextGenerator) *RemoteEvaluator {
	return &RemoteEvaluator{gen: gen}
}

// rubricResponse is the JSON object the prompt asks the backend for.
// Pointer fields distinguish a missing key from a legitimate zero.
type rubricResponse struct {
	Specificity    *float64 `json:"specificity"`
	Structure      *float64 `json:"structure"`
	Persuasiveness *float64 `json:"persuasiveness"`
	Feedback       string   `json:"feedback"`
	Improvements   []string `json:"improvements"`
}

// Evaluate builds the rubric prompt, calls the backend and validates
// its output. Any failure is returned to the gateway for fallback.
func (r *RemoteEvaluator) Evaluate(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationResult, error) {
	text, err := r.gen.GenerateText(ctx, buildPrompt(req))
	if err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("generate evaluation: %w", err)
	}

	rubric, err := parseRubric(text)
	if err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("parse evaluation: %w", err)
	}

	detail := domain.ScoreDetail{
		Specificity:    clamp(*rubric.Specificity),
		Structure:      clamp(*rubric.Structure),
		Persuasiveness: clamp(*rubric.Persuasiveness),
	}
	// Never trust a backend-provided overall score.
	score := detail.Overall()

	improvements := rubric.Improvements
	if len(improvements) > 3 {
		improvements = improvements[:3]
	}

	return domain.EvaluationResult{
		Score:        score,
		ScoreDetail:  detail,
		Feedback:     rubric.Feedback,
		Improvements: improvements,
		XpEarned:     CalculateXP(score, req.Difficulty),
	}, nil
}

// parseRubric extracts and decodes the JSON object from the backend's
// free-text response. A fenced ```json block wins when present; a
// failed decode strips residual fence markers and retries once.
func parseRubric(text string) (*rubricResponse, error) {
	raw := text
	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil {
		raw = m[1]
	}

	rubric, err := decodeRubric(strings.TrimSpace(raw))
	if err != nil {
		cleaned := strings.ReplaceAll(text, "```json", "")
		cleaned = strings.ReplaceAll(cleaned, "```", "")
		rubric, err = decodeRubric(strings.TrimSpace(cleaned))
		if err != nil {
			return nil, err
		}
	}
	return rubric, nil
}

func decodeRubric(raw string) (*rubricResponse, error) {
	var rubric rubricResponse
	if err := json.Unmarshal([]byte(raw), &rubric); err != nil {
		return nil, fmt.Errorf("decode rubric JSON: %w", err)
	}
	if rubric.Specificity == nil || rubric.Structure == nil || rubric.Persuasiveness == nil {
		return nil, fmt.Errorf("rubric JSON missing score dimensions")
	}
	if rubric.Feedback == "" {
		return nil, fmt.Errorf("rubric JSON missing feedback")
	}
	return &rubric, nil
}
