package models

import "time"

// Journey is a user-named snapshot of a node sequence.
type Journey struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	SavedAt time.Time     `json:"saved_at"`
	Nodes   []HistoryNode `json:"nodes"`
}

// JourneyMetadata describes one stored journey file without decoding it.
type JourneyMetadata struct {
	Name      string    `json:"name"`
	File      string    `json:"file"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
