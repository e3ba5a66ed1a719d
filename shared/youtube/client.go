package youtube

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"clipwatch/internal/models"
	"clipwatch/shared/config"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Client reads public video metadata from the YouTube Data API. Only an API
// key is needed; no user-scoped data is accessed.
type Client struct {
	service *youtube.Service
}

func NewClient(cfg *config.YouTubeConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("YouTube API key is required (set YOUTUBE_API_KEY or youtube.api_key)")
	}

	ctx := context.Background()

	service, err := youtube.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{service: service}, nil
}

// GetVideoMetadata fetches title, channel, and duration for one video.
func (c *Client) GetVideoMetadata(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	call := c.service.Videos.List([]string{"snippet", "contentDetails"}).Id(videoID).Context(ctx)

	response, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video metadata for %s: %w", videoID, err)
	}

	if len(response.Items) == 0 {
		return nil, fmt.Errorf("video %s not found", videoID)
	}

	item := response.Items[0]
	return &models.VideoMetadata{
		ID:              videoID,
		Title:           item.Snippet.Title,
		ChannelTitle:    item.Snippet.ChannelTitle,
		DurationSeconds: parseDurationSeconds(item.ContentDetails.Duration),
	}, nil
}

// parseDurationSeconds converts an ISO 8601 duration (e.g. "PT1M30S",
// "PT2H15M30S") into whole seconds. Unparseable input yields 0.
func parseDurationSeconds(duration string) int {
	if duration == "" {
		return 0
	}

	re := regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)
	matches := re.FindStringSubmatch(duration)

	if len(matches) == 0 {
		return 0
	}

	var totalSeconds int

	if matches[1] != "" {
		if hours, err := strconv.Atoi(matches[1]); err == nil {
			totalSeconds += hours * 3600
		}
	}
	if matches[2] != "" {
		if minutes, err := strconv.Atoi(matches[2]); err == nil {
			totalSeconds += minutes * 60
		}
	}
	if matches[3] != "" {
		if seconds, err := strconv.Atoi(matches[3]); err == nil {
			totalSeconds += seconds
		}
	}

	return totalSeconds
}
