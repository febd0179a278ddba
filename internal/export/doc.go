// Package export is the consumer side of playlist exports. It turns an
// export job from the queue into an email carrying the playlist as a JSON
// attachment.
package export
