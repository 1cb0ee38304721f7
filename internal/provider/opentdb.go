package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"trivia-quiz-service/internal/domain"
)

// Client fetches multiple-choice questions from the Open Trivia DB API.
// One request per call, no retries; a short result set is passed
// through as-is.
type Client struct {
	baseURL  string
	category int
	http     *http.Client
}

// NewClient builds a provider client. A category of 0 means "any
// category".
func NewClient(baseURL string, category int, timeout time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		category: category,
		http:     &http.Client{Timeout: timeout},
	}
}

type apiQuestion struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []apiQuestion `json:"results"`
}

// FetchQuestions requests count multiple-choice questions and maps the
// provider payload verbatim: no reordering, no deduplication, no check
// that count items actually came back.
func (c *Client) FetchQuestions(ctx context.Context, count int) ([]domain.Question, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base URL: %v", domain.ErrProvider, err)
	}
	q := u.Query()
	q.Set("amount", strconv.Itoa(count))
	q.Set("type", "multiple")
	if c.category > 0 {
		q.Set("category", strconv.Itoa(c.category))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", domain.ErrProvider, resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrProvider, err)
	}
	if payload.ResponseCode != 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrProvider, responseCodeMessage(payload.ResponseCode))
	}

	questions := make([]domain.Question, 0, len(payload.Results))
	for _, r := range payload.Results {
		questions = append(questions, domain.Question{
			Category:         r.Category,
			Difficulty:       r.Difficulty,
			Prompt:           r.Question,
			CorrectAnswer:    r.CorrectAnswer,
			IncorrectAnswers: r.IncorrectAnswers,
		})
	}
	return questions, nil
}

// responseCodeMessage maps Open Trivia DB response codes to their
// documented meaning.
func responseCodeMessage(code int) string {
	switch code {
	case 1:
		return "not enough questions for the request"
	case 2:
		return "invalid request parameter"
	case 3:
		return "session token not found"
	case 4:
		return "session token exhausted"
	case 5:
		return "rate limited"
	}
	return fmt.Sprintf("provider response code %d", code)
}
