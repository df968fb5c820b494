package dataset

import "github.com/epitrend/epitrend-api/schema"

// DeriveActive recomputes the active count of every record from its three
// base counts, overwriting whatever the source supplied. Recomputing rather
// than incrementing makes a second application a no-op. The result can be
// negative when the source counts disagree; that is kept as-is.
func DeriveActive(records []schema.CaseRecord) {
	for i := range records {
		records[i].Active = records[i].Confirmed - records[i].Deaths - records[i].Recovered
	}
}
