package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type DeployRequest struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	MetadataURI string `json:"metadata_uri,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

type BurnRequest struct {
	AssetID string `json:"asset_id,omitempty"`
	Amount  string `json:"amount"`
	Reason  string `json:"reason,omitempty"`
}

type BuybackRequest struct {
	AssetID      string `json:"asset_id,omitempty"`
	NativeAmount string `json:"native_amount"`
	Reason       string `json:"reason,omitempty"`
}

type ClaimRequest struct {
	AssetID string `json:"asset_id,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type OperationResponse struct {
	RecordID            string `json:"record_id"`
	AssetID             string `json:"asset_id,omitempty"`
	Success             bool   `json:"success"`
	SettlementSignature string `json:"settlement_signature,omitempty"`
	Error               string `json:"error,omitempty"`
}

type BalancesResponse struct {
	NativeQuantity string `json:"native_quantity"`
	AssetQuantity  string `json:"asset_quantity"`
	RefreshedAt    string `json:"refreshed_at"`
}
