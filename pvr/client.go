// Package pvr looks up tvheadend recordings so that a Kodi PVR item can be
// traced back to its file and given a readable name.
package pvr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeframe is how far a recording's real start may lie from the
// start encoded in the PVR URL.
const DefaultTimeframe = 300 * time.Second

// finishedPath lists every finished recording in one page.
const finishedPath = "/api/dvr/entry/grid_finished?limit=999999"

// Recording is one finished tvheadend DVR entry.
type Recording struct {
	UUID        string `json:"uuid"`
	Title       string `json:"disp_title"`
	Subtitle    string `json:"disp_subtitle"`
	ChannelName string `json:"channelname"`
	Start       int64  `json:"start"`      // scheduled start, unix seconds
	StartReal   int64  `json:"start_real"` // start including pre-padding
	Stop        int64  `json:"stop"`
	Filename    string `json:"filename"` // path on the tvheadend host
	Directory   string `json:"directory"`
}

// StartTime returns the scheduled start.
func (r Recording) StartTime() time.Time {
	return time.Unix(r.Start, 0)
}

type gridResponse struct {
	Entries []Recording `json:"entries"`
	Total   int         `json:"total"`
}

// Client talks to the tvheadend HTTP API.
type Client struct {
	BaseURL    string // e.g. http://tvheadend:9981
	Username   string
	Password   string
	HTTPClient *http.Client
}

// NewClient creates a tvheadend client.
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Username: username,
		Password: password,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FinishedRecordings returns all finished recordings.
func (c *Client) FinishedRecordings(ctx context.Context) ([]Recording, error) {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.BaseURL, "/")+finishedPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.Username != "" {
		req.SetBasicAuth(c.Username, c.Password)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tvheadend API error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var grid gridResponse
	if err := json.Unmarshal(body, &grid); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return grid.Entries, nil
}

// Lookup resolves a Kodi PVR URL to the recordings it may refer to. The
// API offers no way to fetch one entry by the URL, so candidates are matched
// by channel and start time; more than one candidate is possible.
func (c *Client) Lookup(ctx context.Context, pvrURL string, timeframe time.Duration) ([]Recording, error) {
	ref, err := ParseRecordingURL(pvrURL)
	if err != nil {
		return nil, err
	}
	recordings, err := c.FinishedRecordings(ctx)
	if err != nil {
		return nil, err
	}
	return Match(recordings, ref.ChannelName, ref.Start, timeframe), nil
}

// Match returns the recordings on channel whose real start lies within
// timeframe of start, in input order.
func Match(recordings []Recording, channel string, start time.Time, timeframe time.Duration) []Recording {
	if timeframe <= 0 {
		timeframe = DefaultTimeframe
	}
	limit := int64(timeframe / time.Second)

	var matches []Recording
	for _, r := range recordings {
		if r.ChannelName != channel {
			continue
		}
		delta := r.StartReal - start.Unix()
		if delta < 0 {
			delta = -delta
		}
		if delta <= limit {
			matches = append(matches, r)
		}
	}
	return matches
}
