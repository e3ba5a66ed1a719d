package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"clipwatch/internal/models"
	"clipwatch/shared/config"

	"google.golang.org/genai"
)

// ErrMissingAPIKey signals that the classifier cannot be constructed because
// no Gemini credential was configured.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY environment variable not set")

// Sub-category vocabularies the model must pick from, keyed by category.
var (
	NegativeSpeechSubCategories = []string{
		"Devaluation of Others",
		"Entitlement",
		"Victim Narrative/Self-Pity",
		"Shame-Laden",
		"Envy/Resentment",
		"Passive-Aggression",
		"Hostility",
		"Hate Speech",
		"Impaired Empathy / Dismissiveness",
		"Incoherence",
		"Excessive Self-Reference",
	}

	NegativeBehaviorSubCategories = []string{
		"Bullying",
		"Harassment",
		"Drinking alcohol",
		"Violence",
		"Sexism",
	}

	PotentialEmotionsSubCategories = []string{
		"Angry",
		"Fearful/Anxious",
		"Sad",
		"Irritated/Impatient",
		"Cold/Detached",
	}
)

const classifierTemperature = 0.5

// Classifier flags negative content in transcript segments using Gemini.
type Classifier struct {
	client  *genai.Client
	model   string
	timeout time.Duration

	// generate is swapped out in tests.
	generate func(ctx context.Context, prompt string) (string, error)
}

// NewClassifier builds a classifier from the injected configuration. A
// missing API key fails here, at construction, rather than on first use.
func NewClassifier(cfg *config.AIConfig) (*Classifier, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Classifier{
		client:  client,
		model:   cfg.Model,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	c.generate = c.generateContent

	return c, nil
}

// generateContent submits one prompt to Gemini with a deterministic
// low-temperature, JSON-only response configuration.
func (c *Classifier) generateContent(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](classifierTemperature),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}

// SegmentError records a classification failure for a single segment. These
// never abort a batch; they only degrade the result set.
type SegmentError struct {
	Index int
	Err   error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("classification failed for segment %d: %v", e.Index, e.Err)
}

func (e *SegmentError) Unwrap() error { return e.Err }

// Classify runs one moderation request per segment, in order, skipping
// segments past maxTimestampSec. Per-segment failures are collected into the
// returned diagnostics slice; a segment the model declines to flag simply
// produces no event.
func (c *Classifier) Classify(ctx context.Context, segments []models.TranscriptSegment, sensitivity, maxTimestampSec int) ([]models.AnalysisEvent, []error) {
	var events []models.AnalysisEvent
	var diagnostics []error

	for i, segment := range segments {
		if segment.OffsetSeconds() > maxTimestampSec {
			continue
		}

		event, err := c.classifySegment(ctx, segment, sensitivity)
		if err != nil {
			diagnostics = append(diagnostics, &SegmentError{Index: i, Err: err})
			continue
		}
		if event != nil {
			events = append(events, *event)
		}
	}

	return events, diagnostics
}

// classifySegment submits one segment to the model. A nil event with nil
// error means the model found nothing to flag.
func (c *Classifier) classifySegment(ctx context.Context, segment models.TranscriptSegment, sensitivity int) (*models.AnalysisEvent, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := buildModerationPrompt(segment.Text, sensitivity)

	raw, err := c.generate(callCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to classify segment: %w", err)
	}

	reply := strings.TrimSpace(raw)
	if reply == "" || reply == `""` {
		return nil, nil
	}

	finding, err := parseFinding(reply)
	if err != nil {
		return nil, err
	}

	return &models.AnalysisEvent{
		Timestamp:   segment.OffsetSeconds(),
		Category:    finding.Category,
		SubCategory: finding.SubCategory,
		Description: finding.Description,
		Phrase:      finding.Phrase,
	}, nil
}

func buildModerationPrompt(text string, sensitivity int) string {
	return fmt.Sprintf(`You are an expert AI content moderation engine. Analyze the following YouTube transcript segment for negative speech, negative behavior, or potential negative emotions. Use the sensitivity index (%d) to determine how strictly to flag content (1=least sensitive, 10=most sensitive, 5=medium). Judge as if Carl Jung were a parent.

Transcript segment:
"""
%s
"""

If you detect a negative event, respond with a JSON object with the following schema:
{
  "category": "Negative Speech" | "Negative Behavior" | "Potential Emotions",
  "subCategory": string, // Must be one of the predefined sub-categories below
  "description": string, // Brief, neutral, one-sentence description (under 15 words)
  "phrase": string // The quoted phrase or utterance that triggered the flag
}
If there is no negative event, respond with an empty string.

**Valid Sub-Categories (use these exact strings):**
- For "Negative Speech": %s
- For "Negative Behavior": %s
- For "Potential Emotions": %s`,
		sensitivity,
		text,
		strings.Join(NegativeSpeechSubCategories, ", "),
		strings.Join(NegativeBehaviorSubCategories, ", "),
		strings.Join(PotentialEmotionsSubCategories, ", "),
	)
}

// finding is the model's reply shape before it is stamped with a timestamp.
type finding struct {
	Category    string `json:"category"`
	SubCategory string `json:"subCategory"`
	Description string `json:"description"`
	Phrase      string `json:"phrase"`
}

// parseFinding decodes the model reply in two stages: a strict unmarshal
// first, then a best-effort extraction of an embedded JSON object from
// surrounding text (markdown fences, stray prose). A reply that yields no
// object or lacks any required field is treated as unparseable.
func parseFinding(reply string) (*finding, error) {
	var f finding
	if err := json.Unmarshal([]byte(reply), &f); err != nil {
		startIdx := strings.Index(reply, "{")
		endIdx := strings.LastIndex(reply, "}")
		if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
			return nil, fmt.Errorf("no JSON found in response: %s", reply)
		}
		if err := json.Unmarshal([]byte(reply[startIdx:endIdx+1]), &f); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response %q: %w", reply, err)
		}
	}

	if f.Category == "" || f.SubCategory == "" || f.Description == "" || f.Phrase == "" {
		return nil, fmt.Errorf("response is missing required fields: %s", reply)
	}

	return &f, nil
}
