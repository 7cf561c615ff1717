package models

import "time"

// SnapshotRecord is the persisted form of one (company, month) rollup.
// Payload holds the JSON document; JSON keeps explicit nulls that gob
// encoding would collapse into zero values.
type SnapshotRecord struct {
	ID         string    `json:"id"`
	CompanyKey string    `json:"company_key" badgerhold:"index"`
	Month      string    `json:"month" badgerhold:"index"` // YYYY-MM
	RunID      string    `json:"run_id"`
	Payload    []byte    `json:"payload"`
	CreatedAt  time.Time `json:"created_at"`
}

// SnapshotID builds the record key for a company and month.
func SnapshotID(companyKey, month string) string {
	return "snapshot:" + companyKey + ":" + month
}
