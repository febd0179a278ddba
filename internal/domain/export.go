package domain

import "time"

// ExportQueue is the queue topic export jobs are published to.
const ExportQueue = "export:songs"

// ExportJob is the message handed to the queue. It is never persisted by the
// playlist service; durability is the broker's job.
type ExportJob struct {
	PlaylistID  string    `json:"playlistId"`
	TargetEmail string    `json:"targetEmail"`
	RequestedBy string    `json:"requestedBy,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Receipt confirms the broker accepted an export job. It says nothing about
// whether the job has been processed.
type Receipt struct {
	PlaylistID string    `json:"playlistId"`
	MessageID  string    `json:"messageId"`
	Queue      string    `json:"queue"`
	AcceptedAt time.Time `json:"acceptedAt"`
}
