// Package validator provides the HTTP client adapter for the external
// multimodal swing-validation service. The service itself is out of scope;
// this is only the consumer side of its contract. Transient transport
// failures surface as errors, which the pipeline treats identically to an
// invalid verdict.
package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/victorzhrn/swingmaster/internal/analyzer"
	"github.com/victorzhrn/swingmaster/internal/segmenter"
)

// Client calls a remote validation endpoint with candidate segments.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ analyzer.Validator = (*Client)(nil)

// NewClient returns a validator client for the service at baseURL. Timeouts
// are the caller's concern: configure them on httpClient, or pass nil for
// http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// validateRequest is the wire form sent to the service: the candidate's
// frames plus the peak annotation.
type validateRequest struct {
	Frames          []json.RawMessage `json:"frames"`
	PeakIndex       int               `json:"peak_index"`
	PeakVelocity    float64           `json:"peak_velocity"`
	PeakTimestamp   float64           `json:"peak_timestamp"`
	AngularVelocity []float64         `json:"angular_velocity"`
}

// ValidateSwing implements analyzer.Validator.
func (c *Client) ValidateSwing(ctx context.Context, candidate segmenter.Candidate) (analyzer.ValidatedSegment, error) {
	req := validateRequest{
		Frames:          make([]json.RawMessage, 0, len(candidate.Frames)),
		PeakIndex:       candidate.PeakIndex,
		PeakVelocity:    candidate.PeakVelocity,
		PeakTimestamp:   candidate.PeakTimestamp,
		AngularVelocity: candidate.AngularVelocity,
	}
	for _, frame := range candidate.Frames {
		encoded, err := json.Marshal(frame)
		if err != nil {
			return analyzer.ValidatedSegment{}, fmt.Errorf("encode candidate frame: %w", err)
		}
		req.Frames = append(req.Frames, encoded)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return analyzer.ValidatedSegment{}, fmt.Errorf("encode validation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/validate", bytes.NewReader(body))
	if err != nil {
		return analyzer.ValidatedSegment{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return analyzer.ValidatedSegment{}, fmt.Errorf("validation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return analyzer.ValidatedSegment{}, fmt.Errorf("validation service returned status %d", resp.StatusCode)
	}

	var verdict analyzer.ValidatedSegment
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return analyzer.ValidatedSegment{}, fmt.Errorf("decode validation response: %w", err)
	}
	return verdict, nil
}
