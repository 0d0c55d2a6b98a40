// internal/workers/assessment/upload-assessment-spreadsheet/models.go
package uploadassessmentspreadsheet

type Input struct {
	Assessment map[string]interface{} `json:"assessment"`
}

type Output struct {
	Status     string      `json:"status"`
	APIURL     string      `json:"apiUrl"`
	StatusCode int         `json:"statusCode,omitempty"`
	Response   interface{} `json:"response,omitempty"`
	Error      string      `json:"error,omitempty"`
	Timestamp  string      `json:"timestamp"`
}
