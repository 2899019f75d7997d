package advisor

import (
	"errors"
	"net/http"
	"time"

	"github.com/deserthomes/goapi/domain/analysis"
)

var (
	ErrStatusCodeNotOk = errors.New("http.status != 200")
	ErrNoChoices       = errors.New("len(choices) == 0")
	ErrMissingApiKey   = errors.New("missing api key")
)

const (
	// ModelPrimary is tried first for every completion
	ModelPrimary = "llama-3.3-70b-versatile"
	// ModelFallback is a smaller model used when the primary is unavailable
	ModelFallback = "llama-3.1-8b-instant"
)

// Client produces market analyses through an OpenAI compatible chat
// completions endpoint, degrading to deterministic heuristics when the
// endpoint cannot serve. It satisfies analysis.Advisor.
type Client interface {
	analysis.Advisor
}

type ClientCfg struct {
	HttpClient http.Client
	Timeout    time.Duration
	ApiUrl     string
	ApiKey     string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}
