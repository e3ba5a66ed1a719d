package models

// VideoMetadata is the subset of YouTube Data API fields the service uses
// when resolving a video before analysis.
type VideoMetadata struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	ChannelTitle    string `json:"channel_title"`
	DurationSeconds int    `json:"duration_seconds"`
}
