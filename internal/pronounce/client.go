// Package pronounce calls the external Korean pronunciation-scoring API.
package pronounce

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const languageCode = "korean"

var ErrScoring = errors.New("pronunciation scoring failed")

// Client talks to the scoring endpoint.
type Client struct {
	baseURL    string
	accessKey  string
	httpClient *http.Client
}

func NewClient(baseURL, accessKey string) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		accessKey: accessKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type scoreRequest struct {
	Argument scoreArgument `json:"argument"`
}

type scoreArgument struct {
	LanguageCode string `json:"language_code"`
	Script       string `json:"script"`
	Audio        string `json:"audio"`
}

type scoreResponse struct {
	Result       int    `json:"result"`
	Reason       string `json:"reason,omitempty"`
	ReturnObject struct {
		Recognized string `json:"recognized"`
		Score      string `json:"score"`
	} `json:"return_object"`
}

// Score sends the recording and the expected script and returns the score
// (1.0 to 5.0 on the upstream scale).
func (c *Client) Score(ctx context.Context, script string, audio []byte) (float64, error) {
	body, err := json.Marshal(scoreRequest{Argument: scoreArgument{
		LanguageCode: languageCode,
		Script:       script,
		Audio:        base64.StdEncoding.EncodeToString(audio),
	}})
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Authorization", c.accessKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScoring, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: read body: %v", ErrScoring, err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d: %s", ErrScoring, resp.StatusCode, string(raw))
	}

	var parsed scoreResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0, fmt.Errorf("%w: decode: %v", ErrScoring, err)
	}
	if parsed.Result != 0 {
		return 0, fmt.Errorf("%w: %s", ErrScoring, parsed.Reason)
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(parsed.ReturnObject.Score), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad score %q", ErrScoring, parsed.ReturnObject.Score)
	}
	return score, nil
}
