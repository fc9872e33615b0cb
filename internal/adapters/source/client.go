// Package source is the HTTP client for the spreadsheet-backed leaderboard
// API. Every response is a {success, data, message} envelope.
//
// Rows are looked up under the first of these keys holding an array:
// rows, leaderboard, items, anglers, total, day1, day2, season. A bare array
// is taken as the rows themselves.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/okian/bassboard/internal/domain/model"
	"github.com/okian/bassboard/internal/domain/normalize"
	"github.com/okian/bassboard/pkg/logger"
	"github.com/okian/bassboard/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout      = 15 * time.Second
	defaultActionParam  = "endpoint"
	defaultEventIDParam = "event_id"
	defaultEventsAction = "events"
	defaultUserAgent    = "bassboard/1.0"
	maxBodyBytes        = 8 << 20
	snippetLen          = 200
)

// RowKeys is the priority order of keys searched for leaderboard rows.
var RowKeys = []string{"rows", "leaderboard", "items", "anglers", "total", "day1", "day2", "season"}

// Payload is the unwrapped data of an envelope.
type Payload struct {
	Data any
	// WholeEnvelope is set when the envelope had no data field and the
	// whole payload was returned in its place.
	WholeEnvelope bool
}

// Client issues requests against one base URL.
type Client struct {
	httpClient           *http.Client
	base                 *url.URL
	timeout              time.Duration
	requestsPerMinute    int
	limiter              *rate.Limiter
	actionParam          string
	eventIDParam         string
	eventsAction         string
	tabActions           map[model.Tab]string
	wholePayloadFallback bool
	userAgent            string
	logger               logger.Logger
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		httpClient:   &http.Client{},
		base:         base,
		timeout:      defaultTimeout,
		actionParam:  defaultActionParam,
		eventIDParam: defaultEventIDParam,
		eventsAction: defaultEventsAction,
		tabActions: map[model.Tab]string{
			model.TabTotal:  "leaderboard",
			model.TabDay1:   "day1",
			model.TabDay2:   "day2",
			model.TabSeason: "season",
		},
		wholePayloadFallback: true,
		userAgent:            defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("source")
	}
	if c.requestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(float64(c.requestsPerMinute)/60.0), 1)
	}
	return c, nil
}

// Action returns the endpoint name serving tab.
func (c *Client) Action(tab model.Tab) (string, bool) {
	a, ok := c.tabActions[tab]
	return a, ok
}

// Request calls action with params and unwraps the envelope.
func (c *Client) Request(ctx context.Context, action string, params url.Values) (Payload, error) {
	start := time.Now()
	requestID := uuid.NewString()

	payload, err := c.do(ctx, requestID, action, params)

	elapsed := time.Since(start)
	outcome := outcomeOf(err)
	metrics.RecordUpstreamRequest(action, outcome, float64(elapsed.Milliseconds()))
	fields := []logger.Field{
		logger.String("request_id", requestID),
		logger.String("action", action),
		logger.String("event_id", params.Get(c.eventIDParam)),
		logger.Duration("duration", elapsed),
	}
	if err != nil {
		metrics.RecordErrorByComponent("source", outcome)
		c.logger.Warn(ctx, "upstream request failed", append(fields, logger.Error(err))...)
		return Payload{}, err
	}
	if payload.WholeEnvelope {
		metrics.RecordWholePayloadFallback()
		c.logger.Warn(ctx, "envelope has no data field, using whole payload", fields...)
	}
	c.logger.Debug(ctx, "upstream request done", fields...)
	return payload, nil
}

func (c *Client) do(ctx context.Context, requestID, action string, params url.Values) (Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Payload{}, &TransportError{Timeout: ctx.Err() != nil, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(action, params), nil)
	if err != nil {
		return Payload{}, &TransportError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Payload{}, &TransportError{Timeout: isTimeout(err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Payload{}, &TransportError{Timeout: isTimeout(err), Err: fmt.Errorf("read response body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Payload{}, &TransportError{StatusCode: resp.StatusCode, Body: truncate(body, snippetLen)}
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return Payload{}, &MalformedResponseError{Snippet: truncate(body, snippetLen), Err: err}
	}
	return c.unwrap(doc)
}

func (c *Client) buildURL(action string, params url.Values) string {
	u := *c.base
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set(c.actionParam, action)
	u.RawQuery = q.Encode()
	return u.String()
}

// unwrap applies the envelope rules: success=false fails with the payload
// message, otherwise data is returned. Without data the whole payload is
// returned and flagged, unless the fallback is disabled.
func (c *Client) unwrap(doc any) (Payload, error) {
	env, isObject := doc.(map[string]any)
	if isObject {
		if ok, isBool := env["success"].(bool); isBool && !ok {
			msg, _ := env["message"].(string)
			if msg == "" {
				msg = defaultAPIMessage
			}
			return Payload{}, &APIError{Message: msg}
		}
		if data, ok := env["data"]; ok && data != nil {
			return Payload{Data: data}, nil
		}
	}
	if !c.wholePayloadFallback {
		return Payload{}, &MalformedResponseError{Err: errors.New("envelope has no data field")}
	}
	return Payload{Data: doc, WholeEnvelope: true}, nil
}

// Events fetches, normalizes and sorts the events list, newest first.
// Undated events go last; ties keep API order.
func (c *Client) Events(ctx context.Context) ([]model.Event, error) {
	p, err := c.Request(ctx, c.eventsAction, nil)
	if err != nil {
		return nil, err
	}

	var items []any
	switch d := p.Data.(type) {
	case []any:
		items = d
	case map[string]any:
		raw, ok := d["events"]
		if ok && raw != nil {
			if items, ok = raw.([]any); !ok {
				return nil, &MalformedResponseError{Err: fmt.Errorf("events is %T, not a list", raw)}
			}
		}
	default:
		return nil, &MalformedResponseError{Err: fmt.Errorf("events data is %T", p.Data)}
	}

	events := normalize.Events(items)
	for range events {
		metrics.RecordEventNormalized()
	}
	slices.SortStableFunc(events, func(a, b model.Event) int {
		switch {
		case b.Date.Before(a.Date):
			return -1
		case a.Date.Before(b.Date):
			return 1
		default:
			return 0
		}
	})
	return events, nil
}

// Leaderboard fetches tab's rows for eventID. The board's event id is the one
// echoed by the payload when present, so callers can reject mismatches.
func (c *Client) Leaderboard(ctx context.Context, eventID string, tab model.Tab) (model.Board, error) {
	action, ok := c.tabActions[tab]
	if !ok {
		return model.Board{}, fmt.Errorf("%w: %q", ErrUnknownTab, tab)
	}
	params := url.Values{}
	params.Set(c.eventIDParam, eventID)

	p, err := c.Request(ctx, action, params)
	if err != nil {
		return model.Board{}, err
	}

	board := model.Board{EventID: eventID, Tab: tab, WholeEnvelope: p.WholeEnvelope}
	items, echoed, err := rowsOf(p.Data)
	if err != nil {
		return model.Board{}, err
	}
	if echoed != "" {
		board.EventID = echoed
	}
	board.Rows = normalize.Rows(items)
	for _, r := range board.Rows {
		metrics.RecordRowNormalized()
		for _, f := range normalize.UnparseableFields(r) {
			metrics.RecordFieldUnparseable(f)
		}
	}
	return board, nil
}

func rowsOf(data any) ([]any, string, error) {
	switch d := data.(type) {
	case []any:
		return d, "", nil
	case map[string]any:
		echoed := normalize.Text(d[normalize.KeyEventID])
		for _, k := range RowKeys {
			if items, ok := d[k].([]any); ok {
				return items, echoed, nil
			}
		}
		return nil, echoed, nil
	default:
		return nil, "", &MalformedResponseError{Err: fmt.Errorf("leaderboard data is %T", data)}
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrAPI):
		return metrics.OutcomeAPI
	case errors.Is(err, ErrMalformed):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeTransport
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
