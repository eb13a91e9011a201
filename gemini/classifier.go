// Package gemini implements the classification oracle on top of the Google
// Gemini generative language REST API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/feedgen"
	"github.com/go-resty/resty/v2"
)

const (
	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.5-flash"

	// DefaultEndpoint is the public Gemini API base URL.
	DefaultEndpoint = "https://generativelanguage.googleapis.com"

	// DefaultTimeout bounds a single oracle round trip.
	DefaultTimeout = 60 * time.Second
)

// Ensure Classifier implements feedgen.Classifier at compile time.
var _ feedgen.Classifier = (*Classifier)(nil)

// Classifier sends HTML to Gemini and returns the raw text of its answer.
// It is safe for concurrent use. Responses are never cached.
type Classifier struct {
	client    *resty.Client
	apiKey    string
	model     string
	endpoint  string
	timeout   time.Duration
	counter   feedgen.TokenCounter
	maxTokens int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithModel sets the model name. Defaults to DefaultModel.
func WithModel(model string) Option {
	return func(c *Classifier) {
		c.model = model
	}
}

// WithEndpoint overrides the API base URL. Defaults to DefaultEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Classifier) {
		c.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithTimeout sets the timeout for oracle requests.
// Defaults to DefaultTimeout (60s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		c.timeout = d
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Classifier) {
		c.client = resty.NewWithClient(hc)
	}
}

// WithTokenBudget rejects prompts longer than max tokens before they are sent.
// A zero or negative max disables the check.
func WithTokenBudget(counter feedgen.TokenCounter, max int) Option {
	return func(c *Classifier) {
		c.counter = counter
		c.maxTokens = max
	}
}

// NewClassifier creates a Classifier authenticated with apiKey.
// An empty key is reported as ECONFIG on the first Classify call.
func NewClassifier(apiKey string, opts ...Option) *Classifier {
	c := &Classifier{
		apiKey:   apiKey,
		model:    DefaultModel,
		endpoint: DefaultEndpoint,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = resty.New()
	}
	c.client.SetTimeout(c.timeout)

	return c
}

// Classify sends instruction followed by html as a single user turn and
// returns the concatenated text of every part of the streamed response.
func (c *Classifier) Classify(ctx context.Context, html string, instruction feedgen.Instruction) (string, error) {
	if c.apiKey == "" {
		return "", feedgen.Errorf(feedgen.ECONFIG, "GEMINI_API_KEY is not set")
	}

	prompt := string(instruction) + html

	if c.counter != nil && c.maxTokens > 0 {
		n, err := c.counter.CountTokens(ctx, prompt)
		if err != nil {
			return "", err
		}
		if n > c.maxTokens {
			return "", feedgen.Errorf(feedgen.EINVALID, "page too large for oracle: %d tokens exceeds budget of %d", n, c.maxTokens)
		}
	}

	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(BuildRequest(prompt)).
		Post(c.endpoint + "/v1beta/models/" + c.model + ":streamGenerateContent")
	if err != nil {
		return "", feedgen.Errorf(feedgen.ETRANSPORT, "oracle request failed: %v", redact(err))
	}
	if !res.IsSuccess() {
		return "", feedgen.Errorf(feedgen.ETRANSPORT, "oracle returned HTTP %d", res.StatusCode())
	}

	responses, err := DecodeResponse(res.Body())
	if err != nil {
		return "", err
	}
	return Flatten(responses), nil
}

// redact strips the request URL, which carries the API key, from transport errors.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

// Request is the generateContent request body.
type Request struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

// GenerationConfig asks the model for a JSON response.
type GenerationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

// Content is one turn of a conversation.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is a text fragment of a turn.
type Part struct {
	Text string `json:"text"`
}

// Response is a single element of the streamed response array.
type Response struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one generated answer.
type Candidate struct {
	Content Content `json:"content"`
}

// BuildRequest returns the request body for a single-turn prompt.
func BuildRequest(prompt string) Request {
	return Request{
		Contents: []Content{{
			Role:  "user",
			Parts: []Part{{Text: prompt}},
		}},
		GenerationConfig: GenerationConfig{
			ResponseMimeType: "application/json",
		},
	}
}

// DecodeResponse decodes a streamed response body.
// The body must be a JSON array whose elements each carry a candidates list
// of contents with parts. Anything else is EDECODE.
func DecodeResponse(body []byte) ([]Response, error) {
	var raw []struct {
		Candidates *[]struct {
			Content *struct {
				Role  string `json:"role"`
				Parts *[]struct {
					Text *string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, feedgen.Errorf(feedgen.EDECODE, "malformed oracle response: %v", err)
	}

	responses := make([]Response, 0, len(raw))
	for i, r := range raw {
		if r.Candidates == nil {
			return nil, feedgen.Errorf(feedgen.EDECODE, "oracle response %d has no candidates", i)
		}
		resp := Response{Candidates: make([]Candidate, 0, len(*r.Candidates))}
		for j, c := range *r.Candidates {
			if c.Content == nil || c.Content.Parts == nil {
				return nil, feedgen.Errorf(feedgen.EDECODE, "oracle candidate %d.%d has no content", i, j)
			}
			content := Content{Role: c.Content.Role, Parts: make([]Part, 0, len(*c.Content.Parts))}
			for k, p := range *c.Content.Parts {
				if p.Text == nil {
					return nil, feedgen.Errorf(feedgen.EDECODE, "oracle part %d.%d.%d has no text", i, j, k)
				}
				content.Parts = append(content.Parts, Part{Text: *p.Text})
			}
			resp.Candidates = append(resp.Candidates, Candidate{Content: content})
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// Flatten concatenates the text of every part of every candidate of every
// response, in order.
func Flatten(responses []Response) string {
	var sb strings.Builder
	for _, r := range responses {
		for _, c := range r.Candidates {
			for _, p := range c.Content.Parts {
				sb.WriteString(p.Text)
			}
		}
	}
	return sb.String()
}
