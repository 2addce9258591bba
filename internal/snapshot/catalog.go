package snapshot

import "time"

/*
The catalog is a record of what a snapshot walk exported. It is a
primitive for verifying, inventorying and auditing exports.
*/

// Catalog summarizes one snapshot session.
type Catalog struct {
	ID                  string    `json:"id"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	Classes             []string  `json:"classes"`
	NumSourceRecords    int       `json:"num_source_records"`
	NumRecordsProcessed int       `json:"num_records_processed"`
	Completed           bool      `json:"completed"`
}
