package models

// TranscriptSegment is one timestamped span of transcribed speech.
// Offset and Duration are in milliseconds; Duration is omitted when the
// recognizer returned a single untimed result. Segments are emitted in
// playback order and downstream code relies on that ordering.
type TranscriptSegment struct {
	Offset   int    `json:"offset"`
	Text     string `json:"text"`
	Duration *int   `json:"duration,omitempty"`
}

// OffsetSeconds returns the segment start rounded down to whole seconds.
func (s TranscriptSegment) OffsetSeconds() int {
	return s.Offset / 1000
}
