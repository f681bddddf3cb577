package planlinesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Planline HTTP API client.
type Client struct {
	BaseURL     string
	BasePath    string
	ActorID     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:  baseURL,
		BasePath: "/v0",
		Timeout:  10 * time.Second,
	}
}

type Plan struct {
	ID        string `json:"id"`
	Authority string `json:"authority"`
	Name      string `json:"name"`
	Status    string `json:"status"`
}

type Plans struct {
	Active string `json:"active"`
	Plans  []Plan `json:"plans"`
}

type Milestone struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Date  string `json:"date"`
	Kind  string `json:"kind"`
}

type Readiness struct {
	Gateway string `json:"gateway"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

type Action struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// Gateway timestamps are empty strings until set.
type Gateway struct {
	ID                string   `json:"id"`
	Status            string   `json:"status"`
	PublishedAt       string   `json:"published_at"`
	SubmittedAt       string   `json:"submitted_at"`
	AdviceReceivedAt  string   `json:"advice_received_at"`
	AdvicePublishedAt string   `json:"advice_published_at"`
	Actions           []Action `json:"actions"`
}

type GatewayView struct {
	Gateway   Gateway   `json:"gateway"`
	Readiness Readiness `json:"readiness"`
}

type Timeline struct {
	TimetablePublishedAt      string      `json:"timetable_published_at"`
	NoticePublishedAt         string      `json:"notice_published_at"`
	ScopingEnd                string      `json:"scoping_end"`
	VisionOutcomesPublishedAt string      `json:"vision_outcomes_published_at"`
	Readiness                 []Readiness `json:"readiness"`
}

type Representation struct {
	ID         string `json:"id"`
	Respondent string `json:"respondent"`
	ReceivedAt string `json:"received_at"`
	Summary    string `json:"summary"`
	Status     string `json:"status"`
}

type Consultation struct {
	Type               string           `json:"type"`
	Representations    []Representation `json:"representations"`
	SummaryDraft       string           `json:"summary_draft"`
	SummaryPublishedAt string           `json:"summary_published_at"`
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts"`
	Type       string `json:"type"`
	PlanID     string `json:"plan_id,omitempty"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}

// PaginatedEvents wraps list responses with cursors.
type PaginatedEvents struct {
	Items      []Event `json:"items"`
	NextCursor string  `json:"next_cursor"`
}

// APIError wraps non-2xx responses. Code and Message come from the error envelope when present.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]any
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

func (c *Client) Plans(ctx context.Context) (Plans, error) {
	var resp Plans
	err := c.do(ctx, http.MethodGet, "plans", nil, &resp)
	return resp, err
}

// SwitchPlan makes planID the active plan for subsequent calls from every client.
func (c *Client) SwitchPlan(ctx context.Context, planID string) (Plans, error) {
	var resp Plans
	err := c.do(ctx, http.MethodPut, "plans/active", map[string]any{"plan_id": planID}, &resp)
	return resp, err
}

// Home returns the dashboard summary as decoded JSON.
func (c *Client) Home(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	err := c.do(ctx, http.MethodGet, "home", nil, &resp)
	return resp, err
}

func (c *Client) Milestones(ctx context.Context, upcoming bool, limit int) ([]Milestone, error) {
	q := url.Values{}
	if upcoming {
		q.Set("upcoming", "true")
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	var resp []Milestone
	err := c.do(ctx, http.MethodGet, withQuery("milestones", q), nil, &resp)
	return resp, err
}

func (c *Client) AddMilestone(ctx context.Context, label, date, kind string) (Milestone, error) {
	body := map[string]any{"label": label, "date": date, "kind": kind}
	var resp Milestone
	err := c.do(ctx, http.MethodPost, "milestones", body, &resp)
	return resp, err
}

func (c *Client) Timeline(ctx context.Context) (Timeline, error) {
	var resp Timeline
	err := c.do(ctx, http.MethodGet, "timeline", nil, &resp)
	return resp, err
}

// Publish stamps a timeline publication: "timetable", "notice" or "vision-outcomes".
func (c *Client) Publish(ctx context.Context, what string) (Timeline, error) {
	var resp Timeline
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("timeline/%s/publish", url.PathEscape(what)), nil, &resp)
	return resp, err
}

func (c *Client) CloseScoping(ctx context.Context, end string) (Timeline, error) {
	var resp Timeline
	err := c.do(ctx, http.MethodPut, "timeline/scoping-end", map[string]any{"end": end}, &resp)
	return resp, err
}

func (c *Client) Consultation(ctx context.Context, ct string) (Consultation, error) {
	var resp Consultation
	err := c.do(ctx, http.MethodGet, "consultations/"+url.PathEscape(ct), nil, &resp)
	return resp, err
}

func (c *Client) AddRepresentation(ctx context.Context, ct string) (Representation, error) {
	var resp Representation
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("consultations/%s/representations", url.PathEscape(ct)), nil, &resp)
	return resp, err
}

func (c *Client) SetRepresentationStatus(ctx context.Context, ct, repID, status string) (Representation, error) {
	var resp Representation
	endpoint := fmt.Sprintf("consultations/%s/representations/%s", url.PathEscape(ct), url.PathEscape(repID))
	err := c.do(ctx, http.MethodPatch, endpoint, map[string]any{"status": status}, &resp)
	return resp, err
}

func (c *Client) PublishSummary(ctx context.Context, ct string) (Consultation, error) {
	var resp Consultation
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("consultations/%s/summary/publish", url.PathEscape(ct)), nil, &resp)
	return resp, err
}

func (c *Client) Gateway(ctx context.Context, g string) (GatewayView, error) {
	var resp GatewayView
	err := c.do(ctx, http.MethodGet, "gateways/"+url.PathEscape(g), nil, &resp)
	return resp, err
}

// TransitionGateway applies one of drafting, submit, receive-advice,
// publish-advice, pass, not-pass or publish-summary.
func (c *Client) TransitionGateway(ctx context.Context, g, transition string) (GatewayView, error) {
	var resp GatewayView
	endpoint := fmt.Sprintf("gateways/%s/transitions/%s", url.PathEscape(g), url.PathEscape(transition))
	err := c.do(ctx, http.MethodPost, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) Readiness(ctx context.Context) ([]Readiness, error) {
	var resp []Readiness
	err := c.do(ctx, http.MethodGet, "readiness", nil, &resp)
	return resp, err
}

// Events returns recent events.
func (c *Client) Events(ctx context.Context, limit int) ([]Event, error) {
	page, err := c.EventsPage(ctx, limit, "")
	return page.Items, err
}

// EventsPage returns a paginated event listing.
func (c *Client) EventsPage(ctx context.Context, limit int, cursor string) (PaginatedEvents, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	var resp PaginatedEvents
	err := c.do(ctx, http.MethodGet, withQuery("events", q), nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(endpoint), &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.ActorID != "":
		req.Header.Set("X-Actor-Id", c.ActorID)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return decodeAPIError(resp.StatusCode, b)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: string(body)}
	var env struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.Details = env.Error.Details
	}
	return apiErr
}

func withQuery(p string, q url.Values) string {
	if len(q) == 0 {
		return p
	}
	return p + "?" + q.Encode()
}

func (c *Client) url(endpoint string) string {
	base := strings.TrimRight(c.BaseURL, "/")
	if bp := strings.Trim(c.BasePath, "/"); bp != "" {
		base += "/" + bp
	}
	return base + "/" + strings.TrimLeft(endpoint, "/")
}
