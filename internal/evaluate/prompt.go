package evaluate

import (
	"fmt"
	"strings"

	"github.com/hanatore/api/internal/domain"
)

// methodDescriptions holds the canonical step descriptions for the
// known answer-structuring methods.
var methodDescriptions = map[string]string{
	"PREP": `PREP法:
- P (Point): 結論を先に述べる
- R (Reason): 理由を説明する
- E (Example): 具体例を挙げる
- P (Point): 結論を繰り返す`,

	"STAR": `STAR法:
- S (Situation): 状況を説明する
- T (Task): 課題・目標を述べる
- A (Action): 取った行動を説明する
- R (Result): 結果を述べる`,

	"DESC": `DESC法:
- D (Describe): 状況を客観的に描写する
- E (Express): 自分の気持ちを表現する
- S (Specify): 具体的な提案をする
- C (Consequences): 結果や影響を述べる`,

	"SDS": `SDS法:
- S (Summary): 要約を述べる
- D (Details): 詳細を説明する
- S (Summary): 再度要約する`,
}

func methodDescription(method string) string {
	if desc, ok := methodDescriptions[method]; ok {
		return desc
	}
	return "特定のフォーマットなし"
}

// buildPrompt renders the scoring instructions sent to the generative
// backend, requesting a fenced JSON object with the rubric keys.
func buildPrompt(req domain.EvaluationRequest) string {
	method := req.Method
	if method == "" {
		method = "指定なし"
	}

	var b strings.Builder
	b.WriteString("あなたは話し方トレーニングアプリの採点AIです。\n")
	b.WriteString("以下の回答を採点し、JSON形式でフィードバックを返してください。\n\n")

	fmt.Fprintf(&b, "## 質問\n%s\n\n", req.Question)
	fmt.Fprintf(&b, "## 使用メソッド\n%s\n%s\n\n", method, methodDescription(req.Method))
	fmt.Fprintf(&b, "## ユーザーの回答\n%s\n\n", req.Answer)

	b.WriteString("## 採点基準\n\n")
	b.WriteString("### 1. 具体性 (specificity): 0-100点\n")
	b.WriteString("- 抽象的な表現を避け、具体的なエピソードや数字があるか\n")
	b.WriteString("- 「いい感じ」「頑張った」などの曖昧な表現を避けているか\n")
	b.WriteString("- 5W1Hが明確か\n\n")
	b.WriteString("### 2. 構造 (structure): 0-100点\n")
	fmt.Fprintf(&b, "- 指定されたメソッド（%s）に沿っているか\n", method)
	b.WriteString("- 論理的な流れがあるか\n")
	b.WriteString("- 冗長な部分がないか\n\n")
	b.WriteString("### 3. 説得力 (persuasiveness): 0-100点\n")
	b.WriteString("- 理由や根拠が明確か\n")
	b.WriteString("- 相手の立場を考慮しているか\n")
	b.WriteString("- 結論が明確か\n\n")

	b.WriteString("## 出力形式\n")
	b.WriteString("以下のJSON形式で回答してください：\n\n")
	b.WriteString("```json\n")
	b.WriteString("{\n")
	b.WriteString("  \"specificity\": <0-100の整数>,\n")
	b.WriteString("  \"structure\": <0-100の整数>,\n")
	b.WriteString("  \"persuasiveness\": <0-100の整数>,\n")
	b.WriteString("  \"feedback\": \"<2-3文の総合フィードバック（日本語）>\",\n")
	b.WriteString("  \"improvements\": [\"<改善点1>\", \"<改善点2>\", \"<改善点3>\"]\n")
	b.WriteString("}\n")
	b.WriteString("```\n\n")

	b.WriteString("注意:\n")
	b.WriteString("- 各スコアは0-100の整数で返してください\n")
	b.WriteString("- feedbackは励ましつつ具体的な改善点を示してください\n")
	b.WriteString("- improvementsは1-3個の簡潔な改善提案を返してください\n")
	b.WriteString("- 回答が短すぎる場合や質問に答えていない場合は低いスコアをつけてください")

	return b.String()
}
