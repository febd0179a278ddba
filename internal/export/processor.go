package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openmusic/playlists-api/internal/cache"
	"github.com/openmusic/playlists-api/internal/domain"
	"github.com/openmusic/playlists-api/internal/pkg/distlock"
	"github.com/openmusic/playlists-api/internal/pkg/logger"
	"github.com/openmusic/playlists-api/internal/queue"
)

var log = logger.Component("export-worker")

// DefaultDoneTTL is how long a processed message id is remembered.
const DefaultDoneTTL = 24 * time.Hour

// ErrInFlight means another worker holds the message; it is retried later.
var ErrInFlight = errors.New("export already in flight")

// SongSource loads a playlist with its songs.
type SongSource interface {
	GetPlaylistSongs(ctx context.Context, playlistID string) (*domain.PlaylistSongs, error)
}

// Locker hands out per-message locks. *distlock.Factory implements it.
type Locker interface {
	Lock(key string) distlock.Lock
}

// Processor handles export messages. It implements queue.Handler.
type Processor struct {
	songs   SongSource
	mailer  Mailer
	locks   Locker
	done    cache.Store
	doneTTL time.Duration
}

// NewProcessor wires a processor. A nil done store disables redelivery
// dedupe beyond the in-flight lock.
func NewProcessor(songs SongSource, mailer Mailer, locks Locker, done cache.Store) *Processor {
	if done == nil {
		done = cache.NopStore{}
	}
	return &Processor{songs: songs, mailer: mailer, locks: locks, done: done, doneTTL: DefaultDoneTTL}
}

type exportDocument struct {
	Playlist *domain.PlaylistSongs `json:"playlist"`
}

// Handle processes one export job. Malformed jobs and deleted playlists are
// poison; mail and store failures are retried through redelivery.
func (p *Processor) Handle(ctx context.Context, msg queue.Message) error {
	var job domain.ExportJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		return fmt.Errorf("decode export job %s: %v: %w", msg.ID, err, queue.ErrPoison)
	}
	if job.PlaylistID == "" || job.TargetEmail == "" {
		return fmt.Errorf("export job %s missing fields: %w", msg.ID, queue.ErrPoison)
	}

	doneKey := "export:done:" + msg.ID
	if _, err := p.done.Get(ctx, doneKey); err == nil {
		log.Info("skipping already delivered export", "message_id", msg.ID)
		return nil
	}

	lock := p.locks.Lock(msg.ID)
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock export %s: %w", msg.ID, err)
	}
	if !ok {
		return fmt.Errorf("export %s: %w", msg.ID, ErrInFlight)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			log.Warn("export lock release failed", "message_id", msg.ID, "error", err)
		}
	}()

	pl, err := p.songs.GetPlaylistSongs(ctx, job.PlaylistID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("export playlist %s: %v: %w", job.PlaylistID, err, queue.ErrPoison)
	}
	if err != nil {
		return fmt.Errorf("load playlist %s: %w", job.PlaylistID, err)
	}

	doc, err := json.Marshal(exportDocument{Playlist: pl})
	if err != nil {
		return fmt.Errorf("encode export %s: %w", job.PlaylistID, err)
	}

	mailID, err := p.mailer.Send(ctx, Mail{
		To:             job.TargetEmail,
		Subject:        "Playlist export: " + pl.Name,
		Text:           fmt.Sprintf("Attached is the export of playlist %q with %d songs.", pl.Name, len(pl.Songs)),
		AttachmentName: "playlist.json",
		Attachment:     doc,
	})
	if err != nil {
		return fmt.Errorf("mail export %s: %w", job.PlaylistID, err)
	}

	if err := p.done.Set(ctx, doneKey, []byte(mailID), p.doneTTL); err != nil {
		log.Warn("failed to record delivered export", "message_id", msg.ID, "error", err)
	}
	log.Info("export delivered",
		"message_id", msg.ID,
		"playlist_id", job.PlaylistID,
		"target_email", job.TargetEmail,
		"mail_id", mailID,
		"songs", len(pl.Songs),
	)
	return nil
}
