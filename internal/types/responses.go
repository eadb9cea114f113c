package types

// ListResponse is the shared envelope for paginated collection reads.
type ListResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
}

// ChainStatus summarizes the ledger tail for dashboard consumers.
type ChainStatus struct {
	Height        int64   `json:"height"`
	Blocks        int64   `json:"blocks"`
	Events        int64   `json:"events"`
	WalletBalance float64 `json:"wallet_balance"`
}
