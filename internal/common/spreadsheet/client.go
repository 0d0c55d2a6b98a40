// internal/common/spreadsheet/client.go
package spreadsheet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	commonhttp "assessment-workers/internal/common/http"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	// FormatExcel is the only export format the upload API accepts.
	FormatExcel = "excel"
)

// UploadResult mirrors the outcome of a single upload. Upload never returns a
// Go error for remote failures; they are reported with Status "error".
type UploadResult struct {
	Status     string      `json:"status"`
	APIURL     string      `json:"api_url"`
	StatusCode int         `json:"status_code,omitempty"`
	Response   interface{} `json:"response,omitempty"`
	Error      string      `json:"error,omitempty"`
	Timestamp  string      `json:"timestamp"`
}

func (r *UploadResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

type uploadPayload struct {
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
	Format    string      `json:"format"`
}

// Client posts assessment records to the spreadsheet export API.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *commonhttp.Client
	now        func() time.Time
}

func NewClient(apiURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: commonhttp.NewClient(timeout),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (c *Client) APIURL() string {
	return c.apiURL
}

func (c *Client) Upload(ctx context.Context, data interface{}) *UploadResult {
	result := &UploadResult{APIURL: c.apiURL}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	payload := uploadPayload{
		Data:      data,
		Timestamp: c.now().Format(isoLayout),
		Format:    FormatExcel,
	}

	resp, err := c.httpClient.PostJSON(ctx, c.apiURL, headers, payload)
	result.Timestamp = c.now().Format(isoLayout)
	if err != nil {
		result.Status = StatusError
		result.Error = fmt.Sprintf("Request failed: %s", err.Error())
		return result
	}

	if resp.StatusCode != http.StatusOK {
		result.Status = StatusError
		result.StatusCode = resp.StatusCode
		result.Error = string(resp.Body)
		return result
	}

	var decoded interface{}
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		result.Status = StatusError
		result.StatusCode = resp.StatusCode
		result.Error = fmt.Sprintf("invalid JSON response: %s", err.Error())
		return result
	}

	result.Status = StatusSuccess
	result.Response = decoded
	return result
}

const isoLayout = "2006-01-02T15:04:05.000000"
