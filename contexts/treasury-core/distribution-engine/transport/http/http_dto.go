package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RecipientDTO struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

type DistributeRequest struct {
	Kind        string         `json:"kind"`
	AssetID     string         `json:"asset_id,omitempty"`
	Recipients  []RecipientDTO `json:"recipients,omitempty"`
	Reason      string         `json:"reason,omitempty"`
	UseSnapshot bool           `json:"use_snapshot,omitempty"`
	SnapshotID  string         `json:"snapshot_id,omitempty"`
	TotalAmount string         `json:"total_amount,omitempty"`
}

type OutcomeDTO struct {
	Address   string `json:"address"`
	Amount    string `json:"amount"`
	Signature string `json:"signature,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

type DistributeResponse struct {
	ID           string       `json:"id"`
	Status       string       `json:"status"`
	SuccessCount int          `json:"success_count"`
	FailCount    int          `json:"fail_count"`
	Outcomes     []OutcomeDTO `json:"outcomes"`
}

type SnapshotHolderDTO struct {
	Address    string `json:"address"`
	Balance    string `json:"balance"`
	Percentage string `json:"percentage"`
}

type SnapshotResponse struct {
	ID          string              `json:"id"`
	AssetID     string              `json:"asset_id"`
	Holders     []SnapshotHolderDTO `json:"holders"`
	HolderCount int                 `json:"holder_count"`
	TotalHeld   string              `json:"total_held"`
	CapturedAt  string              `json:"captured_at"`
}
