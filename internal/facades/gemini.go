package facades

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/avdonin/gw-code-review/internal/logger"
)

// DefaultBaseURL is the production endpoint of the generative language API.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

var (
	// ErrNoContent is returned when the API call succeeds but the response
	// carries no extractable text. Callers treat this as a soft failure.
	ErrNoContent = errors.New("model response contains no text")

	// ErrTimeout is returned when the upstream call exceeds its deadline.
	ErrTimeout = errors.New("generative api request timed out")
)

// systemInstruction is the fixed reviewer persona sent with every request.
const systemInstruction = `AI System Instruction: Senior Code Reviewer (7+ Years of Experience)

Role & Responsibilities:
- Code Quality: Ensure clean, maintainable, well-structured code.
- Best Practices: Suggest industry-standard coding practices.
- Efficiency & Performance: Identify areas to optimize execution time and resource usage.
- Error Detection: Spot potential bugs, security risks, and logical flaws.
- Scalability: Advise on future-proof solutions.
- Readability & Maintainability: Ensure code is easy to understand and modify.

Guidelines for Review:
1. Provide Constructive Feedback with reasoning.
2. Suggest Code Improvements and refactors.
3. Detect & Fix Performance Bottlenecks.
4. Ensure Security Compliance.
5. Promote Consistency & Style Guide adherence.
6. Follow DRY & SOLID principles.
7. Identify Unnecessary Complexity.
8. Verify Test Coverage.
9. Ensure Proper Documentation.
10. Encourage Modern Practices.

Tone & Approach:
- Be precise and to the point.
- Provide real-world examples when explaining concepts.
- Assume the developer is competent but offer improvements.
- Balance strictness with encouragement.`

// Wire types for the generateContent endpoint.

type generateContentRequest struct {
	SystemInstruction *content  `json:"system_instruction,omitempty"`
	Contents          []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

type apiErrorResponse struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// GeminiFacade calls the generative language REST API to produce code reviews.
type GeminiFacade struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewGeminiFacade creates a facade for the given model. The http.Client
// carries the request timeout; pass DefaultBaseURL outside of tests.
func NewGeminiFacade(client *http.Client, baseURL, apiKey, model string) *GeminiFacade {
	return &GeminiFacade{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

// GenerateReview submits the code snippet with the fixed reviewer instruction
// and returns the first text part of the first candidate. Returns ErrNoContent
// when the model yields no text and ErrTimeout when the call hits its deadline.
// The API key never appears in returned errors.
func (f *GeminiFacade) GenerateReview(ctx context.Context, code string) (string, error) {
	prompt := fmt.Sprintf("Review the following code based on the instructions:\n\n---\n%s\n---", code)

	reqBody := generateContentRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", f.baseURL, f.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// The key travels in a header so it cannot leak through URLs in logs.
	req.Header.Set("x-goog-api-key", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			logger.Log.Errorw("generative api call timed out", "model", f.model)
			return "", ErrTimeout
		}
		logger.Log.Errorw("generative api call failed", "model", f.model, "error", err)
		return "", fmt.Errorf("generative api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			logger.Log.Errorw("generative api returned error",
				"model", f.model,
				"status", resp.StatusCode,
				"api_status", apiErr.Error.Status,
			)
			return "", fmt.Errorf("generative api error (%s): %s", apiErr.Error.Status, apiErr.Error.Message)
		}
		return "", fmt.Errorf("generative api returned status %d", resp.StatusCode)
	}

	var out generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	text, ok := out.firstText()
	if !ok {
		logger.Log.Warnw("generative api response has no content", "model", f.model)
		return "", ErrNoContent
	}

	return text, nil
}

// firstText extracts the first non-empty text part of the first candidate.
func (r *generateContentResponse) firstText() (string, bool) {
	for _, cand := range r.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text, true
			}
		}
	}
	return "", false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
