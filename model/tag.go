package model

// Tag is a user label attached to tracks many-to-many. Names are unique
// case-insensitively.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// WorkingSet is an unordered user-defined track selection used as a query
// filter. Names are unique case-insensitively.
type WorkingSet struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
}
