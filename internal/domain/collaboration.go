package domain

// Collaboration grants a non-owner user write access to a playlist's song
// membership. The owner is never stored as a collaborator.
type Collaboration struct {
	ID         string `json:"id" db:"id"`
	PlaylistID string `json:"playlist_id" db:"playlist_id"`
	UserID     string `json:"user_id" db:"user_id"`
}

// User is the minimal identity record the playlist service reads. Credentials
// live in the authentication service and never pass through here.
type User struct {
	ID       string `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Fullname string `json:"fullname" db:"fullname"`
}
