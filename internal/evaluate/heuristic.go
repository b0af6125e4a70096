package evaluate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hanatore/api/internal/domain"
)

// numeralPattern matches ASCII and full-width digits.
var numeralPattern = regexp.MustCompile(`[0-9０-９]`)

// Lexicons holds the locale-specific marker words the heuristic scorer
// looks for. The defaults target Japanese answers.
type Lexicons struct {
	// Specificity markers granting the primary bonus alongside numerals.
	Specificity []string
	// Detail markers granting the secondary specificity bonus.
	Detail []string
	// Reasoning markers granting the persuasiveness bonus.
	Reasoning []string
	// Methods maps a method name to its structure keyword set.
	Methods map[string][]string
}

// DefaultLexicons returns the Japanese marker-word sets.
func DefaultLexicons() Lexicons {
	return Lexicons{
		Specificity: []string{"パーセント", "割"},
		Detail:      []string{"具体的", "例えば", "特に", "実際", "結果"},
		Reasoning:   []string{"なぜなら", "理由", "から", "ため", "よって", "したがって"},
		Methods: map[string][]string{
			"PREP": {"結論", "理由", "例", "具体例", "したがって"},
			"STAR": {"状況", "課題", "行動", "結果"},
			"DESC": {"状況", "気持ち", "提案", "影響"},
			"SDS":  {"要約", "詳細", "まとめ"},
		},
	}
}

// Heuristic is the deterministic local scorer. It is the fallback for
// the generative backend and the reference for its response shape.
type Heuristic struct {
	lex Lexicons
}

// NewHeuristic creates a heuristic scorer with the given lexicons.
func NewHeuristic(lex Lexicons) *Heuristic {
	return &Heuristic{lex: lex}
}

// Evaluate scores the answer. It never fails on user input; an empty
// answer is legal and scores low.
func (h *Heuristic) Evaluate(_ context.Context, req domain.EvaluationRequest) (domain.EvaluationResult, error) {
	answer := req.Answer

	// Answer length is a coarse proxy for effort and completeness.
	baseScore := float64(utf8.RuneCountInString(answer)) / 5.0
	if baseScore > 100 {
		baseScore = 100
	}

	hasNumbers := numeralPattern.MatchString(answer) || containsAny(answer, h.lex.Specificity)
	hasDetail := containsAny(answer, h.lex.Detail)
	specificity := baseScore
	if hasNumbers {
		specificity += 15
	}
	if hasDetail {
		specificity += 10
	}

	hasStructure := false
	if keywords, ok := h.lex.Methods[req.Method]; ok {
		hasStructure = containsAny(answer, keywords)
	}
	structure := baseScore
	if hasStructure {
		structure += 20
	}

	hasReasoning := containsAny(answer, h.lex.Reasoning)
	persuasiveness := baseScore
	if hasReasoning {
		persuasiveness += 15
	}

	detail := domain.ScoreDetail{
		Specificity:    clamp(specificity),
		Structure:      clamp(structure),
		Persuasiveness: clamp(persuasiveness),
	}
	score := detail.Overall()

	feedback, improvements := h.feedbackFor(score, req.Method, hasNumbers, hasStructure, hasReasoning)

	return domain.EvaluationResult{
		Score:        score,
		ScoreDetail:  detail,
		Feedback:     feedback,
		Improvements: improvements,
		XpEarned:     CalculateXP(score, req.Difficulty),
	}, nil
}

// feedbackFor picks feedback and up to three improvement suggestions
// from a fixed ladder keyed on score bands and untriggered heuristics.
func (h *Heuristic) feedbackFor(score int, method string, hasNumbers, hasStructure, hasReasoning bool) (string, []string) {
	var feedback string
	var improvements []string

	switch {
	case score >= 80:
		feedback = "素晴らしい回答です！構造的で具体的な内容になっています。"
	case score >= 60:
		feedback = "良い回答です。いくつかのポイントを改善するとさらに良くなります。"
		if !hasNumbers {
			improvements = append(improvements, "具体的な数字やデータを入れるとより説得力が増します")
		}
		if !hasStructure && method != "" {
			improvements = append(improvements, fmt.Sprintf("%s法の構造をより意識してみましょう", method))
		}
	case score >= 40:
		feedback = "基本的なポイントは押さえていますが、改善の余地があります。"
		improvements = append(improvements, "結論を最初に述べることを意識してみましょう")
		if !hasNumbers {
			improvements = append(improvements, "具体的な数字やエピソードを追加しましょう")
		}
		if !hasReasoning {
			improvements = append(improvements, "理由や根拠を明確に示しましょう")
		}
	default:
		feedback = "回答をより具体的に、構造的にすることで大きく改善できます。"
		improvements = append(improvements,
			"まず結論を明確にしましょう",
			"具体的なエピソードや数字を入れましょう",
			"理由を「なぜなら」を使って説明しましょう",
		)
	}

	if len(improvements) > 3 {
		improvements = improvements[:3]
	}
	return feedback, improvements
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
