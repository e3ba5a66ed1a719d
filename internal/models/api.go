package models

// ExtractionMethod identifies how the transcript was produced. Clients key
// off this string, so it stays fixed across backends.
const ExtractionMethod = "huggingface-whisper-asr"

// AnalyzeRequest is the body accepted by both endpoints. Sensitivity and
// VideoDuration are only meaningful for analysis; they are declared as any
// because a non-numeric value must fall back to the default, not reject the
// whole request.
type AnalyzeRequest struct {
	VideoID       string `json:"videoId"`
	Sensitivity   any    `json:"sensitivity,omitempty"`
	VideoDuration any    `json:"videoDuration,omitempty"`
}

// TranscribeResponse is the success body of the transcribe endpoint.
type TranscribeResponse struct {
	Transcript             []TranscriptSegment `json:"transcript"`
	ExtractionMethod       string              `json:"extractionMethod"`
	TranscriptSegmentCount int                 `json:"transcriptSegmentCount"`
}

// AnalyzeResponse is the success body of the analyze endpoint.
type AnalyzeResponse struct {
	Events                 []AnalysisEvent `json:"events"`
	ExtractionMethod       string          `json:"extractionMethod"`
	TranscriptSegmentCount int             `json:"transcriptSegmentCount"`
}

// ErrorResponse is the in-band error envelope. Both endpoints answer HTTP
// 200 for logical failures; the error field is the only failure signal.
type ErrorResponse struct {
	Error string `json:"error"`
}
