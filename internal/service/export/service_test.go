package export

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/openmusic/playlists-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAccess grants read to the owner and listed collaborators of pl-1.
type fakeAccess struct {
	owner   string
	collabs map[string]bool
}

func (f *fakeAccess) VerifyAccess(_ context.Context, playlistID, userID string, _ domain.AccessMode) error {
	if playlistID != "pl-1" {
		return domain.NotFound("playlist %s", playlistID)
	}
	if userID == f.owner || f.collabs[userID] {
		return nil
	}
	return domain.Forbidden("user %s", userID)
}

type capturePublisher struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
	err      error
}

func (p *capturePublisher) Publish(_ context.Context, topic string, payload []byte) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return "msg-1", nil
}

func newTestService() (*Service, *capturePublisher) {
	pub := &capturePublisher{}
	access := &fakeAccess{owner: "u1", collabs: map[string]bool{"u2": true}}
	return NewService(access, pub), pub
}

func TestSubmitExport_CollaboratorGetsReceipt(t *testing.T) {
	svc, pub := newTestService()

	receipt, err := svc.SubmitExport(context.Background(), "pl-1", "u2", "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "pl-1", receipt.PlaylistID)
	assert.Equal(t, "msg-1", receipt.MessageID)
	assert.Equal(t, domain.ExportQueue, receipt.Queue)
	assert.False(t, receipt.AcceptedAt.IsZero())

	require.Len(t, pub.payloads, 1)
	assert.Equal(t, domain.ExportQueue, pub.topics[0])

	var job domain.ExportJob
	require.NoError(t, json.Unmarshal(pub.payloads[0], &job))
	assert.Equal(t, "pl-1", job.PlaylistID)
	assert.Equal(t, "user@example.com", job.TargetEmail)
	assert.Equal(t, "u2", job.RequestedBy)
}

func TestSubmitExport_PayloadShape(t *testing.T) {
	svc, pub := newTestService()

	_, err := svc.SubmitExport(context.Background(), "pl-1", "u1", "owner@example.com")
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(pub.payloads[0], &raw))
	assert.Equal(t, "pl-1", raw["playlistId"])
	assert.Equal(t, "owner@example.com", raw["targetEmail"])
}

func TestSubmitExport_StrangerForbidden(t *testing.T) {
	svc, pub := newTestService()

	_, err := svc.SubmitExport(context.Background(), "pl-1", "u3", "user@example.com")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, pub.payloads)
}

func TestSubmitExport_UnknownPlaylist(t *testing.T) {
	svc, pub := newTestService()

	_, err := svc.SubmitExport(context.Background(), "pl-404", "u1", "user@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, pub.payloads)
}

func TestSubmitExport_PublishFailureIsDeliveryError(t *testing.T) {
	svc, pub := newTestService()
	cause := errors.New("throttled")
	pub.err = cause

	receipt, err := svc.SubmitExport(context.Background(), "pl-1", "u1", "user@example.com")
	assert.Nil(t, receipt)

	var de *domain.DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ExportQueue, de.Queue)
	assert.ErrorIs(t, err, cause)
}

func TestSubmitExport_EmptyTarget(t *testing.T) {
	svc, pub := newTestService()

	_, err := svc.SubmitExport(context.Background(), "pl-1", "u1", "  ")
	assert.ErrorIs(t, err, domain.ErrInvalid)
	assert.Empty(t, pub.payloads)
}

func TestSubmitExport_AccessCheckedBeforeTarget(t *testing.T) {
	svc, pub := newTestService()
	ctx := context.Background()

	_, err := svc.SubmitExport(ctx, "pl-1", "u3", "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.NotErrorIs(t, err, domain.ErrInvalid)

	_, err = svc.SubmitExport(ctx, "pl-missing", "u1", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, pub.payloads)
}
