// Package collaboration owns the collaborator relation between users and
// playlists.
//
// It grants and revokes collaborator access and answers whether a user is a
// collaborator of a playlist. Uniqueness of a (playlist, user) pair is left to
// the store's unique constraint; the service never pre-checks, so two
// concurrent grants resolve to one success and one domain.ErrConflict.
//
// The service layer depends on the Repository interface defined in
// repository.go. It never imports net/http or database/sql directly.
package collaboration
