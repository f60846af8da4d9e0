package wargame

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"qjm-roster/internal/catalog"
	"qjm-roster/internal/scenario"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRPS     = 5
	defaultBurst   = 5
)

// Options tunes the client. Zero values fall back to defaults.
type Options struct {
	Timeout    time.Duration
	RPS        float64
	Burst      int
	HTTPClient *http.Client
}

// Client talks JSON over HTTP to the wargame service. It never retries:
// failures are returned to the operator, who re-triggers the action.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := opts.RPS
	if rps <= 0 {
		rps = defaultRPS
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient:  hc,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// ListUnits returns the ground faction tree.
func (c *Client) ListUnits(ctx context.Context) ([]catalog.Faction, error) {
	var out []catalog.Faction
	if err := c.request(ctx, "listUnits", http.MethodGet, "/qjm/get_units", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAirUnits returns the air faction tree.
func (c *Client) ListAirUnits(ctx context.Context) ([]catalog.Faction, error) {
	var out []catalog.Faction
	if err := c.request(ctx, "listAirUnits", http.MethodGet, "/qjm/get_air_units", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Catalog fetches ground and air units and validates the combined listing.
func (c *Client) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	ground, err := c.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	air, err := c.ListAirUnits(ctx)
	if err != nil {
		return nil, err
	}
	cat := &catalog.Catalog{Ground: ground, Air: air}
	if err := cat.Validate(); err != nil {
		return nil, &RemoteError{Op: "listUnits", Err: err}
	}
	return cat, nil
}

// GetPersonnelCount sums personnel of the given attacker and defender units.
func (c *Client) GetPersonnelCount(ctx context.Context, attackers, defenders []string) (*PersonnelCount, error) {
	body := struct {
		Attackers []string `json:"attackers"`
		Defenders []string `json:"defenders"`
	}{nonNil(attackers), nonNil(defenders)}
	var out PersonnelCount
	if err := c.request(ctx, "getPersonnelCount", http.MethodPost, "/get_personnel", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SimulateBattle runs the combat model without committing losses.
func (c *Client) SimulateBattle(ctx context.Context, p *scenario.Payload) (*BattleResult, error) {
	var out BattleResult
	if err := c.request(ctx, "simulateBattle", http.MethodPost, "/simulate_battle", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CommitBattle runs the combat model and applies losses to formations.
func (c *Client) CommitBattle(ctx context.Context, p *scenario.Payload) (bool, error) {
	var out Status
	if err := c.request(ctx, "commitBattle", http.MethodPost, "/commit_battle", p, &out); err != nil {
		return false, err
	}
	return out.OK, nil
}

// SaveScenarioState asks the service to persist its scenario state.
func (c *Client) SaveScenarioState(ctx context.Context) (bool, error) {
	var out Status
	if err := c.request(ctx, "saveScenarioState", http.MethodPost, "/save_scenario_state", nil, &out); err != nil {
		return false, err
	}
	return out.OK, nil
}

// ExportOrbatMapper asks the service to export the order of battle.
func (c *Client) ExportOrbatMapper(ctx context.Context) (bool, error) {
	var out Status
	if err := c.request(ctx, "exportOrbatMapper", http.MethodPost, "/export_orbatmapper", nil, &out); err != nil {
		return false, err
	}
	return out.OK, nil
}

// GetFormationDetails returns name, faction, personnel and OLI of one formation.
func (c *Client) GetFormationDetails(ctx context.Context, unitID string) (*FormationDetails, error) {
	var out FormationDetails
	path := "/get_formation/" + url.PathEscape(unitID)
	if err := c.request(ctx, "getFormationDetails", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateFormation sets the personnel strength of a formation by name.
func (c *Client) UpdateFormation(ctx context.Context, name string, personnel int) error {
	body := struct {
		Name      string `json:"name"`
		Personnel int    `json:"personnel"`
	}{name, personnel}
	return c.request(ctx, "updateFormation", http.MethodPost, "/update_formation", body, nil)
}

func (c *Client) request(ctx context.Context, op, method, path string, body, result any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return &RemoteError{Op: op, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &RemoteError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &RemoteError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RemoteError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(errorMessage(respBody))}
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return &RemoteError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty response"
	}
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
