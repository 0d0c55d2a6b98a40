// internal/common/spreadsheet/client_test.go
package spreadsheet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Upload(t *testing.T) {
	tests := []struct {
		name           string
		apiKey         string
		status         int
		body           string
		validateResult func(t *testing.T, r *UploadResult)
	}{
		{
			name:   "success with api key",
			apiKey: "secret",
			status: http.StatusOK,
			body:   `{"rows":1}`,
			validateResult: func(t *testing.T, r *UploadResult) {
				assert.True(t, r.Succeeded())
				assert.Equal(t, map[string]interface{}{"rows": float64(1)}, r.Response)
				assert.NotEmpty(t, r.Timestamp)
			},
		},
		{
			name:   "upstream error",
			status: http.StatusServiceUnavailable,
			body:   "maintenance",
			validateResult: func(t *testing.T, r *UploadResult) {
				assert.Equal(t, StatusError, r.Status)
				assert.Equal(t, http.StatusServiceUnavailable, r.StatusCode)
				assert.Equal(t, "maintenance", r.Error)
			},
		},
		{
			name:   "created is not success",
			status: http.StatusCreated,
			body:   `{}`,
			validateResult: func(t *testing.T, r *UploadResult) {
				assert.Equal(t, StatusError, r.Status)
				assert.Equal(t, http.StatusCreated, r.StatusCode)
			},
		},
		{
			name:   "non json body",
			status: http.StatusOK,
			body:   "ok",
			validateResult: func(t *testing.T, r *UploadResult) {
				assert.Equal(t, StatusError, r.Status)
				assert.Contains(t, r.Error, "invalid JSON response")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth string
			var gotPayload map[string]interface{}
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				_ = json.NewDecoder(r.Body).Decode(&gotPayload)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, tt.apiKey, 5*time.Second)
			result := client.Upload(context.Background(), map[string]interface{}{"email": "jane@example.com"})

			assert.Equal(t, srv.URL, result.APIURL)
			assert.Equal(t, FormatExcel, gotPayload["format"])
			assert.Equal(t, map[string]interface{}{"email": "jane@example.com"}, gotPayload["data"])
			if tt.apiKey != "" {
				assert.Equal(t, "Bearer "+tt.apiKey, gotAuth)
			} else {
				assert.Empty(t, gotAuth)
			}
			tt.validateResult(t, result)
		})
	}
}

func TestClient_UploadTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	result := NewClient(url, "", time.Second).Upload(context.Background(), map[string]interface{}{})
	require.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Error, "Request failed: ")
	assert.Zero(t, result.StatusCode)
}
