package question

import (
	"github.com/hanatore/api/internal/domain"
)

// defaultQuestions is the built-in question bank. Sample answers stay
// server-side as reference material for evaluation prompts.
var defaultQuestions = []domain.Question{
	{
		ID:           "q-001",
		Mode:         domain.ModeBusiness,
		TrainingType: domain.TypeStructured,
		Method:       "PREP",
		Title:        "上司に進捗報告をしてください。プロジェクトは予定より1週間遅れています。",
		Context:      "あなたは新規サービス開発プロジェクトのリーダーです。週次ミーティングで上司に状況を報告する場面です。",
		Hint:         "PREP法を使いましょう: Point(結論) → Reason(理由) → Example(具体例) → Point(結論)",
		SampleAnswer: "結論から申し上げますと、プロジェクトは1週間遅延しております。理由は、外部APIの仕様変更により追加開発が必要になったためです。具体的には、認証フローの再実装に3日、テストに2日を要しました。したがって、リリースは来週金曜日となる見込みです。",
		Difficulty:   2,
	},
	{
		ID:           "q-002",
		Mode:         domain.ModeBusiness,
		TrainingType: domain.TypeStructured,
		Method:       "PREP",
		Title:        "新しいツールの導入を提案してください。",
		Context:      "チームの生産性向上のため、新しいプロジェクト管理ツールの導入を提案します。",
		Hint:         "なぜ必要か、どんなメリットがあるかを具体的に説明しましょう。",
		Difficulty:   2,
	},
	{
		ID:           "q-003",
		Mode:         domain.ModeBusiness,
		TrainingType: domain.TypeQuick,
		Title:        "会議の終了時間が迫っています。議論をまとめてください。",
		Context:      "1時間の会議の残り5分。まだ結論が出ていません。",
		Hint:         "30秒以内に、決定事項・保留事項・次のアクションをまとめましょう。",
		Difficulty:   3,
	},
	{
		ID:           "q-004",
		Mode:         domain.ModePresentation,
		TrainingType: domain.TypeStructured,
		Method:       "STAR",
		Title:        "前職での成功体験を面接官に説明してください。",
		Context:      "転職面接で、これまでの実績をアピールする場面です。",
		Hint:         "STAR法を使いましょう: Situation(状況) → Task(課題) → Action(行動) → Result(結果)",
		Difficulty:   3,
	},
	{
		ID:           "q-005",
		Mode:         domain.ModePresentation,
		TrainingType: domain.TypeStructured,
		Method:       "5W1H",
		Title:        "新サービスの企画を経営陣にプレゼンしてください。",
		Context:      "3分間で新規事業の概要を伝える必要があります。",
		Hint:         "5W1Hで整理: Why(なぜ) → What(何を) → Who(誰に) → When(いつ) → Where(どこで) → How(どうやって)",
		Difficulty:   4,
		IsPremium:    true,
	},
	{
		ID:           "q-006",
		Mode:         domain.ModeOneOnOne,
		TrainingType: domain.TypeAIDialog,
		Title:        "部下のモチベーション低下について話し合います。",
		Context:      "最近、部下の仕事への意欲が下がっているように見えます。1on1で状況を聞き出しましょう。",
		Hint:         "傾聴を心がけ、オープンクエスチョンを使いましょう。",
		Difficulty:   3,
		IsPremium:    true,
	},
	{
		ID:           "q-007",
		Mode:         domain.ModeDailyTalk,
		TrainingType: domain.TypeQuick,
		Title:        "初対面の人と雑談をしてください。",
		Context:      "社内の懇親会で、他部署の人と話すことになりました。",
		Hint:         "相手に興味を持ち、質問を交えながら会話を広げましょう。",
		Difficulty:   1,
	},
	{
		ID:           "q-008",
		Mode:         domain.ModeThinking,
		TrainingType: domain.TypeStructured,
		Method:       "ロジックツリー",
		Title:        "売上が下がった原因を分析してください。",
		Context:      "前月比で売上が20%減少しました。原因を特定する必要があります。",
		Hint:         "ロジックツリーで要因を分解: 売上 = 客数 × 客単価 → それぞれの要因を深掘り",
		Difficulty:   4,
		IsPremium:    true,
	},
	{
		ID:           "q-009",
		Mode:         domain.ModeBusiness,
		TrainingType: domain.TypeQuick,
		Title:        "エレベーターピッチ: 30秒で自己紹介をしてください。",
		Context:      "カンファレンスで偶然、業界の有名人とエレベーターで一緒になりました。",
		Hint:         "自分の強みと相手へのメリットを簡潔に伝えましょう。",
		Difficulty:   2,
	},
	{
		ID:           "q-010",
		Mode:         domain.ModePresentation,
		TrainingType: domain.TypeQuick,
		Title:        "急な質問に答えてください: 「なぜ御社を志望しましたか？」",
		Context:      "面接で予想外の質問をされました。",
		Hint:         "結論から話し、具体的なエピソードを添えましょう。",
		Difficulty:   2,
	},
}
