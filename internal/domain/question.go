// Package domain contains core domain types for the Hanatore API.
package domain

// TrainingMode is the situational category a question belongs to.
type TrainingMode string

const (
	ModeBusiness     TrainingMode = "BUSINESS"
	ModePresentation TrainingMode = "PRESENTATION"
	ModeOneOnOne     TrainingMode = "ONE_ON_ONE"
	ModeDailyTalk    TrainingMode = "DAILY_TALK"
	ModeThinking     TrainingMode = "THINKING"
)

// Valid reports whether the mode is one of the known categories.
func (m TrainingMode) Valid() bool {
	switch m {
	case ModeBusiness, ModePresentation, ModeOneOnOne, ModeDailyTalk, ModeThinking:
		return true
	}
	return false
}

// TrainingType is the exercise format of a question or session.
type TrainingType string

const (
	TypeQuick      TrainingType = "QUICK"
	TypeStructured TrainingType = "STRUCTURED"
	TypeAIDialog   TrainingType = "AI_DIALOG"
)

// Valid reports whether the training type is known.
func (t TrainingType) Valid() bool {
	switch t {
	case TypeQuick, TypeStructured, TypeAIDialog:
		return true
	}
	return false
}

// Question is an immutable prompt definition, fixed at deploy time.
// SampleAnswer is reference material for evaluation prompts and must
// never be sent to clients.
type Question struct {
	ID           string       `json:"id"`
	Mode         TrainingMode `json:"mode"`
	TrainingType TrainingType `json:"trainingType"`
	Method       string       `json:"method,omitempty"`
	Title        string       `json:"title"`
	Context      string       `json:"context,omitempty"`
	Hint         string       `json:"hint,omitempty"`
	SampleAnswer string       `json:"-"`
	Difficulty   int          `json:"difficulty"`
	IsPremium    bool         `json:"isPremium"`
}
