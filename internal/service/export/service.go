package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openmusic/playlists-api/internal/domain"
	"github.com/openmusic/playlists-api/internal/pkg/logger"
)

var log = logger.Component("export")

// Service validates access and publishes export jobs.
type Service struct {
	access    AccessVerifier
	publisher Publisher
	topic     string
	now       func() time.Time
}

// NewService creates an export submission service publishing to
// domain.ExportQueue.
func NewService(access AccessVerifier, publisher Publisher) *Service {
	return &Service{
		access:    access,
		publisher: publisher,
		topic:     domain.ExportQueue,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SubmitExport queues an export of playlistID to targetEmail on behalf of
// userID. Read access is enough. Access is checked before the destination, and
// access errors from the playlist service are returned unchanged.
func (s *Service) SubmitExport(ctx context.Context, playlistID, userID, targetEmail string) (*domain.Receipt, error) {
	if err := s.access.VerifyAccess(ctx, playlistID, userID, domain.AccessRead); err != nil {
		return nil, err
	}

	targetEmail = strings.TrimSpace(targetEmail)
	if targetEmail == "" {
		return nil, domain.Invalid("target email is required")
	}

	job := domain.ExportJob{
		PlaylistID:  playlistID,
		TargetEmail: targetEmail,
		RequestedBy: userID,
		SubmittedAt: s.now(),
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal export job: %w", err)
	}

	msgID, err := s.publisher.Publish(ctx, s.topic, payload)
	if err != nil {
		log.Error("export publish failed", "playlist_id", playlistID, "user_id", userID, "error", err)
		return nil, &domain.DeliveryError{Queue: s.topic, Err: err}
	}

	log.Info("export queued",
		"playlist_id", playlistID,
		"user_id", userID,
		"target_email", targetEmail,
		"message_id", msgID,
	)
	return &domain.Receipt{
		PlaylistID: playlistID,
		MessageID:  msgID,
		Queue:      s.topic,
		AcceptedAt: s.now(),
	}, nil
}
