// internal/workers/assessment/generate-assessment-report/models.go
package generateassessmentreport

type Input struct {
	Assessment map[string]interface{} `json:"assessment"`
}

type Output struct {
	Status    string `json:"status"`
	Filename  string `json:"filename"`
	FilePath  string `json:"filePath"`
	FileSize  int64  `json:"fileSize"`
	Timestamp string `json:"timestamp"`
}
