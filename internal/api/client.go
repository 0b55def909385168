package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"quiztour/internal/domain"
	"github.com/google/uuid"
)

// TokenSource supplies the current bearer token. The session store
// implements it; requests that predate a logout keep the token they
// captured.
type TokenSource interface {
	Token() (string, bool)
}

// Client is a thin wrapper over the platform's HTTP API: one method per
// server capability, uniform error normalization, no retries.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewClient builds a client for the platform at baseURL. A zero timeout
// disables the client-side deadline.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

const authNone = false
const authBearer = true

// do issues one request and normalizes the outcome: transport failures
// become *NetworkError, non-2xx responses become *APIError, 2xx bodies are
// decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, auth bool, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if auth {
		token, ok := c.tokens.Token()
		if !ok {
			return domain.ErrNoSession
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("api %s %s: status=%d request_id=%s", method, path, resp.StatusCode, requestID)
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	// A few endpoints answer with a plain sentence instead of JSON.
	if s, ok := out.(*string); ok {
		data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		*s = strings.TrimSpace(string(data))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Login authenticates with username/password; no bearer token is attached.
func (c *Client) Login(ctx context.Context, username, password string) (domain.Identity, error) {
	var identity domain.Identity
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/users/login", authNone, body, &identity); err != nil {
		return domain.Identity{}, err
	}
	return identity, nil
}

// RegisterRequest carries the profile fields of a new account.
type RegisterRequest struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// Register creates a new account. The platform responds with a plain
// acknowledgement, so the body is discarded.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/users/register", authNone, req, nil)
}

// RequestPasswordReset asks the platform to mail a reset token.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/users/reset-password", authNone, body, nil)
}

// ConfirmPasswordReset redeems a reset token for a new password.
func (c *Client) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"newPassword": newPassword}
	path := "/users/reset-password/confirm?token=" + url.QueryEscape(token)
	return c.do(ctx, http.MethodPost, path, authNone, body, nil)
}

// ListTournaments fetches the full tournament collection.
func (c *Client) ListTournaments(ctx context.Context) ([]domain.Tournament, error) {
	var tournaments []domain.Tournament
	if err := c.do(ctx, http.MethodGet, "/tournaments", authBearer, nil, &tournaments); err != nil {
		return nil, err
	}
	return tournaments, nil
}

// CreateTournament submits a new tournament and returns the server copy
// (with its assigned id and zero likes).
func (c *Client) CreateTournament(ctx context.Context, t domain.Tournament) (domain.Tournament, error) {
	var created domain.Tournament
	if err := c.do(ctx, http.MethodPost, "/tournaments/create", authBearer, t, &created); err != nil {
		return domain.Tournament{}, err
	}
	return created, nil
}

// UpdateTournament replaces the tournament's fields.
func (c *Client) UpdateTournament(ctx context.Context, id int64, t domain.Tournament) (domain.Tournament, error) {
	var updated domain.Tournament
	path := fmt.Sprintf("/tournaments/%d", id)
	if err := c.do(ctx, http.MethodPut, path, authBearer, t, &updated); err != nil {
		return domain.Tournament{}, err
	}
	return updated, nil
}

// DeleteTournament removes a tournament.
func (c *Client) DeleteTournament(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tournaments/%d", id), authBearer, nil, nil)
}

// LikeTournament records a like and returns the updated like count. The
// platform acknowledges with a sentence ("Tournament liked. Total likes:
// N"); the trailing count is parsed out of it.
func (c *Client) LikeTournament(ctx context.Context, id int64) (int, error) {
	var body string
	path := fmt.Sprintf("/tournaments/like/%d", id)
	if err := c.do(ctx, http.MethodPost, path, authBearer, nil, &body); err != nil {
		return 0, err
	}
	likes, err := strconv.Atoi(body[strings.LastIndexByte(body, ' ')+1:])
	if err != nil {
		return 0, fmt.Errorf("parse like count from %q: %w", body, err)
	}
	return likes, nil
}

// GetScoreboard fetches the aggregate scoreboard of one tournament.
func (c *Client) GetScoreboard(ctx context.Context, id int64) (domain.Scoreboard, error) {
	var board domain.Scoreboard
	path := fmt.Sprintf("/tournaments/%d/scores", id)
	if err := c.do(ctx, http.MethodGet, path, authBearer, nil, &board); err != nil {
		return domain.Scoreboard{}, err
	}
	return board, nil
}

// StartAttempt creates a server-side attempt and returns its id; the id is
// held client-side for the duration of one quiz session.
func (c *Client) StartAttempt(ctx context.Context, tournamentID int64) (int64, error) {
	var resp struct {
		ID int64 `json:"id"`
	}
	path := fmt.Sprintf("/player/start/%d", tournamentID)
	if err := c.do(ctx, http.MethodPost, path, authBearer, nil, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// GetQuestions fetches the ordered question sequence of a tournament.
func (c *Client) GetQuestions(ctx context.Context, tournamentID int64) ([]domain.TournamentQuestion, error) {
	var questions []domain.TournamentQuestion
	path := fmt.Sprintf("/player/tournament/%d/questions", tournamentID)
	if err := c.do(ctx, http.MethodGet, path, authBearer, nil, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

type submitAnswerRequest struct {
	AttemptID      int64               `json:"attemptId"`
	QuestionID     int64               `json:"questionId"`
	SelectedAnswer domain.AnswerOption `json:"selectedAnswer"`
}

// SubmitAnswer records one answer and returns the platform's feedback.
func (c *Client) SubmitAnswer(ctx context.Context, attemptID, questionID int64, selected domain.AnswerOption) (domain.AnswerFeedback, error) {
	var feedback domain.AnswerFeedback
	body := submitAnswerRequest{AttemptID: attemptID, QuestionID: questionID, SelectedAnswer: selected}
	if err := c.do(ctx, http.MethodPost, "/player/submit-answer", authBearer, body, &feedback); err != nil {
		return domain.AnswerFeedback{}, err
	}
	return feedback, nil
}

// FinishAttempt marks the attempt completed server-side.
func (c *Client) FinishAttempt(ctx context.Context, attemptID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/player/finish/%d", attemptID), authBearer, nil, nil)
}

// MyAttempts fetches the caller's attempt collection.
func (c *Client) MyAttempts(ctx context.Context) ([]domain.Attempt, error) {
	var attempts []domain.Attempt
	if err := c.do(ctx, http.MethodGet, "/player/my-attempts", authBearer, nil, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

// PlayerStats fetches the caller's aggregate statistics.
func (c *Client) PlayerStats(ctx context.Context) (domain.PlayerStats, error) {
	var stats domain.PlayerStats
	if err := c.do(ctx, http.MethodGet, "/users/stats", authBearer, nil, &stats); err != nil {
		return domain.PlayerStats{}, err
	}
	return stats, nil
}
