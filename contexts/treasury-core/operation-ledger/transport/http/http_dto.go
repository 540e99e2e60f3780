package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RecipientOutcomeDTO struct {
	Address   string `json:"address"`
	Amount    string `json:"amount"`
	Signature string `json:"signature,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

type OperationRecordDTO struct {
	ID             string                `json:"id"`
	Kind           string                `json:"kind"`
	AssetID        string                `json:"asset_id,omitempty"`
	Quantity       string                `json:"quantity"`
	Signature      string                `json:"signature,omitempty"`
	Reason         string                `json:"reason,omitempty"`
	Error          string                `json:"error,omitempty"`
	Status         string                `json:"status"`
	RecipientCount int                   `json:"recipient_count,omitempty"`
	SuccessCount   int                   `json:"success_count,omitempty"`
	FailCount      int                   `json:"fail_count,omitempty"`
	Outcomes       []RecipientOutcomeDTO `json:"outcomes,omitempty"`
	CreatedAt      string                `json:"created_at"`
	CompletedAt    string                `json:"completed_at,omitempty"`
}

type ListOperationsRequest struct {
	Kind    string
	AssetID string
	Limit   int
	Offset  int
}

type ListOperationsResponse struct {
	Operations []OperationRecordDTO `json:"operations"`
	Limit      int                  `json:"limit"`
	Offset     int                  `json:"offset"`
}

type AuditEntryDTO struct {
	ID          string            `json:"id"`
	OperationID string            `json:"operation_id,omitempty"`
	Kind        string            `json:"kind,omitempty"`
	Action      string            `json:"action"`
	Rationale   string            `json:"rationale,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Status      string            `json:"status"`
	CreatedAt   string            `json:"created_at"`
	ResolvedAt  string            `json:"resolved_at,omitempty"`
}

type ListAuditResponse struct {
	Entries []AuditEntryDTO `json:"entries"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}
