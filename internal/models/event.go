package models

// Analysis categories recognized by the content classifier.
const (
	CategoryNegativeSpeech    = "Negative Speech"
	CategoryNegativeBehavior  = "Negative Behavior"
	CategoryPotentialEmotions = "Potential Emotions"
)

// AnalysisEvent is a single flagged finding derived from one transcript
// segment. Timestamp is the source segment's offset in whole seconds.
type AnalysisEvent struct {
	Timestamp   int    `json:"timestamp"`
	Category    string `json:"category"`
	SubCategory string `json:"subCategory"`
	Description string `json:"description"`
	Phrase      string `json:"phrase"`
}
