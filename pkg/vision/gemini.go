package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-emotimeter/internal/httpc"
	"github.com/teslashibe/go-emotimeter/pkg/camera"
	"github.com/teslashibe/go-emotimeter/pkg/emotion"
)

// DefaultGeminiEndpoint is the Generative Language API base URL.
const DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

const geminiPrompt = "Look at this face and name the single dominant facial expression. " +
	"Answer with exactly one word from: happy, sad, fear, angry, surprise, neutral, disgust."

// ErrNoAPIKey is returned when the Gemini classifier has no key.
var ErrNoAPIKey = errors.New("vision: gemini API key not set")

// GeminiConfig configures the remote classifier.
type GeminiConfig struct {
	APIKey   string
	Model    string        // e.g. "gemini-2.0-flash"
	Endpoint string        // API base URL, DefaultGeminiEndpoint when empty
	Timeout  time.Duration // Per-request timeout
}

// DefaultGeminiConfig returns defaults without an API key.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		Model:    "gemini-2.0-flash",
		Endpoint: DefaultGeminiEndpoint,
		Timeout:  5 * time.Second,
	}
}

// Gemini classifies face crops by asking Gemini Flash for a one-word answer.
// Each call is a network round trip, so ticks slow to the API latency.
type Gemini struct {
	cfg    GeminiConfig
	client *http.Client
}

// NewGemini creates the classifier.
func NewGemini(cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	def := DefaultGeminiConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Gemini{cfg: cfg, client: httpc.NewClient(cfg.Timeout)}, nil
}

// Classify encodes the face region as JPEG and labels it.
func (g *Gemini) Classify(frame camera.Frame, region image.Rectangle) (emotion.Label, error) {
	roi, err := crop(frame.Mat, region)
	if err != nil {
		return emotion.None, err
	}
	defer roi.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, roi)
	if err != nil {
		return emotion.None, fmt.Errorf("encode face: %w", err)
	}
	jpeg := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	ctx, cancel := context.WithTimeout(context.Background(), g.cfg.Timeout)
	defer cancel()
	return g.LabelJPEG(ctx, jpeg)
}

// LabelJPEG sends a JPEG face crop and parses the reply into a label.
func (g *Gemini) LabelJPEG(ctx context.Context, jpeg []byte) (emotion.Label, error) {
	req := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: geminiPrompt},
				{InlineData: &geminiBlob{MimeType: "image/jpeg", Data: base64.StdEncoding.EncodeToString(jpeg)}},
			},
		}},
		GenerationConfig: geminiGenerationConfig{Temperature: 0, MaxOutputTokens: 5},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(g.cfg.Endpoint, "/"), url.PathEscape(g.cfg.Model), url.QueryEscape(g.cfg.APIKey))

	var resp geminiResponse
	if err := httpc.PostJSON(ctx, g.client, endpoint, req, &resp); err != nil {
		return emotion.None, fmt.Errorf("gemini: %w", err)
	}
	if resp.Error.Message != "" {
		return emotion.None, fmt.Errorf("gemini error: %s", resp.Error.Message)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return emotion.None, fmt.Errorf("gemini: empty response")
	}

	return parseReply(resp.Candidates[0].Content.Parts[0].Text)
}

// parseReply takes the first word of the reply that names a label.
func parseReply(text string) (emotion.Label, error) {
	for _, word := range strings.Fields(text) {
		if label, err := emotion.Parse(word); err == nil {
			return label, nil
		}
	}
	return emotion.None, fmt.Errorf("%w: %q", emotion.ErrUnknownLabel, truncate(text, 40))
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *geminiBlob `json:"inline_data,omitempty"`
}

type geminiBlob struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// geminiResponse is the response structure from Gemini API.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// truncate shortens a string to maxLen runes.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen])
}
