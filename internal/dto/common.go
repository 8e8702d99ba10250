package dto

type ErrorResponse struct {
	Error   bool                   `json:"error"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Storage   string `json:"storage"`
	Timestamp string `json:"timestamp"`
	UserCount int    `json:"userCount"`
}

// ClientListResponse is the paginated, user-scoped client listing. Page size
// is fixed at 10.
type ClientListResponse struct {
	Data       []map[string]interface{} `json:"data"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"pageSize"`
	Total      int64                    `json:"total"`
	TotalPages int                      `json:"totalPages"`
}

type ExportResponse struct {
	RunID        string `json:"runId"`
	Spreadsheet  string `json:"spreadsheet"`
	UpdatedRange string `json:"updatedRange"`
	RowCount     int    `json:"rowCount"`
}
