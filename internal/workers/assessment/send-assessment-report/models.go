// internal/workers/assessment/send-assessment-report/models.go
package sendassessmentreport

const (
	StatusSent    = "success"
	StatusSkipped = "skipped"
)

type Input struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FilePath  string `json:"filePath"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body,omitempty"`
}

type Output struct {
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	ToEmail   string `json:"toEmail,omitempty"`
	FromEmail string `json:"fromEmail,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}
