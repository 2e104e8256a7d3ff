package models

// QuotaState is the client-held daily usage record. The server never trusts it.
type QuotaState struct {
	Date string `json:"date"` // "2025-12-25"
	Used int    `json:"used"`
}
