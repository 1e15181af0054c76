package model

// Match is one brand hit found while sweeping a log source: the candidate
// domain, the absolute index of the entry it came from, and the source URL.
type Match struct {
	Domain     string `json:"domain"`
	EntryIndex int64  `json:"entry_index"`
	LogURL     string `json:"log_url"`
}
