// internal/workers/assessment/store-assessment-record/models.go
package storeassessmentrecord

const (
	StatusStored    = "success"
	StatusDuplicate = "duplicate"
)

type Input struct {
	Assessment map[string]interface{} `json:"assessment"`
	RecordID   string                 `json:"recordId,omitempty"`
	CreatedAt  string                 `json:"createdAt,omitempty"`
}

type Output struct {
	RecordID  string `json:"recordId"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	Duplicate bool   `json:"duplicate"`
	ItemSize  int    `json:"itemSize"`
}
