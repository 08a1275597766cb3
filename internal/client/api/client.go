package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"chessmatch/internal/client/display"
)

// StatusError is returned for non-2xx responses
type StatusError struct {
	Status int
	Body   ErrorResponse
}

func (e *StatusError) Error() string {
	if e.Body.Code != "" {
		return fmt.Sprintf("request failed with status %d (%s)", e.Status, e.Body.Code)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Verbose    bool
	Out        io.Writer // request/response trace
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Out: os.Stdout,
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

func (c *Client) doRequest(method, path string, body interface{}, result interface{}) error {
	// Prepare body
	var bodyReader io.Reader
	var bodyStr string
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonData)
		bodyStr = string(jsonData)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Display request
	fmt.Fprintf(c.Out, "\n%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	if bodyStr != "" && c.Verbose {
		var prettyBody interface{}
		json.Unmarshal([]byte(bodyStr), &prettyBody)
		prettyJSON, _ := json.MarshalIndent(prettyBody, "", "  ")
		fmt.Fprintf(c.Out, "%sRequest Body:%s\n%s\n", display.Cyan, display.Reset, string(prettyJSON))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		fmt.Fprintf(c.Out, "%s[ERROR] %s%s\n", display.Red, err.Error(), display.Reset)
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	// Display response
	statusColor := display.Green
	if resp.StatusCode >= 400 {
		statusColor = display.Red
	}
	fmt.Fprintf(c.Out, "%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)

	if c.Verbose && len(respBody) > 0 {
		var prettyResp interface{}
		if err := json.Unmarshal(respBody, &prettyResp); err == nil {
			prettyJSON, _ := json.MarshalIndent(prettyResp, "", "  ")
			fmt.Fprintf(c.Out, "%sResponse Body:%s\n%s\n", display.Cyan, display.Reset, string(prettyJSON))
		} else {
			fmt.Fprintf(c.Out, "%sResponse:%s\n%s\n", display.Cyan, display.Reset, string(respBody))
		}
	}

	// Parse error response
	if resp.StatusCode >= 400 {
		statusErr := &StatusError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, &statusErr.Body); err == nil {
			fmt.Fprintf(c.Out, "%sError: %s%s\n", display.Red, statusErr.Body.Error, display.Reset)
			if statusErr.Body.Details != "" {
				fmt.Fprintf(c.Out, "%sDetails: %s%s\n", display.Red, statusErr.Body.Details, display.Reset)
			}
		} else {
			fmt.Fprintf(c.Out, "%s%s%s\n", display.Red, string(respBody), display.Reset)
		}
		return statusErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			fmt.Fprintf(c.Out, "%sResponse parse error: %s%s\n", display.Red, err.Error(), display.Reset)
			return err
		}
	}

	return nil
}

// API Methods

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest("GET", "/health", nil, &resp)
	return &resp, err
}

func (c *Client) FindSimilar(req *SimilarRequest) (*SimilarResponse, error) {
	var resp SimilarResponse
	err := c.doRequest("POST", "/api/v1/positions/similar", req, &resp)
	return &resp, err
}

func (c *Client) DecodePosition(fen string) (*PositionResponse, error) {
	var resp PositionResponse
	err := c.doRequest("POST", "/api/v1/positions/decode", &DecodeRequest{FEN: fen}, &resp)
	return &resp, err
}

func (c *Client) GetPosition(positionID string) (*PositionResponse, error) {
	var resp PositionResponse
	err := c.doRequest("GET", "/api/v1/positions/"+url.PathEscape(positionID), nil, &resp)
	return &resp, err
}

func (c *Client) GetGame(gameID string) (*GameResponse, error) {
	var resp GameResponse
	err := c.doRequest("GET", "/api/v1/games/"+url.PathEscape(gameID), nil, &resp)
	return &resp, err
}

// RawRequest performs a raw HTTP request for debugging purposes
func (c *Client) RawRequest(method, path string, body string) error {
	var bodyData interface{}
	if body != "" {
		if err := json.Unmarshal([]byte(body), &bodyData); err != nil {
			// Try as raw string
			bodyData = body
		}
	}

	return c.doRequest(method, path, bodyData, nil)
}
