package collaboration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/openmusic/playlists-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory repository that enforces the (playlist, user)
// uniqueness the way a unique index would: atomically at insert time.
type memRepo struct {
	mu      sync.Mutex
	owners  map[string]string
	users   map[string]bool
	collabs map[string]*domain.Collaboration // keyed by "playlistID|userID"
	failAll error
}

func newMemRepo() *memRepo {
	return &memRepo{
		owners:  map[string]string{"pl-1": "u1"},
		users:   map[string]bool{"u1": true, "u2": true, "u3": true},
		collabs: make(map[string]*domain.Collaboration),
	}
}

func (m *memRepo) key(playlistID, userID string) string { return playlistID + "|" + userID }

func (m *memRepo) PlaylistOwner(_ context.Context, playlistID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return "", m.failAll
	}
	owner, ok := m.owners[playlistID]
	if !ok {
		return "", domain.NotFound("playlist %s", playlistID)
	}
	return owner, nil
}

func (m *memRepo) Insert(_ context.Context, c *domain.Collaboration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	if !m.users[c.UserID] {
		return domain.NotFound("user %s", c.UserID)
	}
	k := m.key(c.PlaylistID, c.UserID)
	if _, exists := m.collabs[k]; exists {
		return domain.Conflict("collaboration %s", k)
	}
	cp := *c
	m.collabs[k] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, playlistID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := m.key(playlistID, userID)
	if _, ok := m.collabs[k]; !ok {
		return domain.NotFound("collaboration %s", k)
	}
	delete(m.collabs, k)
	return nil
}

func (m *memRepo) Exists(_ context.Context, playlistID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return false, m.failAll
	}
	_, ok := m.collabs[m.key(playlistID, userID)]
	return ok, nil
}

type countingInvalidator struct{ calls atomic.Int32 }

func (c *countingInvalidator) InvalidateAccess(context.Context, string) { c.calls.Add(1) }

func TestAddCollaborator_GrantsAccess(t *testing.T) {
	inv := &countingInvalidator{}
	svc := NewService(newMemRepo(), inv)
	ctx := context.Background()

	id, err := svc.AddCollaborator(ctx, "pl-1", "u2")
	require.NoError(t, err)
	assert.Contains(t, id, "collab-")

	ok, err := svc.IsCollaborator(ctx, "pl-1", "u2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(1), inv.calls.Load())
}

func TestAddCollaborator_DuplicateIsConflict(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	ctx := context.Background()

	_, err := svc.AddCollaborator(ctx, "pl-1", "u2")
	require.NoError(t, err)

	_, err = svc.AddCollaborator(ctx, "pl-1", "u2")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAddCollaborator_ConcurrentPairYieldsOneSuccess(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	ctx := context.Background()

	const callers = 8
	var (
		wg        sync.WaitGroup
		start     = make(chan struct{})
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.AddCollaborator(ctx, "pl-1", "u2")
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, domain.ErrConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(callers-1), conflicts.Load())
}

func TestAddCollaborator_OwnerRejected(t *testing.T) {
	svc := NewService(newMemRepo(), nil)

	_, err := svc.AddCollaborator(context.Background(), "pl-1", "u1")
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestAddCollaborator_UnknownPlaylistOrUser(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	ctx := context.Background()

	_, err := svc.AddCollaborator(ctx, "pl-missing", "u2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.AddCollaborator(ctx, "pl-1", "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddCollaborator_StoreFailureIsPersistenceError(t *testing.T) {
	repo := newMemRepo()
	repo.failAll = errors.New("connection reset by peer")
	svc := NewService(repo, nil)

	_, err := svc.AddCollaborator(context.Background(), "pl-1", "u2")
	var pe *domain.PersistenceError
	assert.True(t, errors.As(err, &pe))
}

func TestRemoveCollaborator(t *testing.T) {
	inv := &countingInvalidator{}
	svc := NewService(newMemRepo(), inv)
	ctx := context.Background()

	_, err := svc.AddCollaborator(ctx, "pl-1", "u2")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveCollaborator(ctx, "pl-1", "u2"))
	ok, err := svc.IsCollaborator(ctx, "pl-1", "u2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(2), inv.calls.Load())

	err = svc.RemoveCollaborator(ctx, "pl-1", "u2")
	assert.ErrorIs(t, err, domain.ErrNotFound, "a second removal reports the missing row")
}

func TestIsCollaborator_StoreFailure(t *testing.T) {
	repo := newMemRepo()
	repo.failAll = errors.New("timeout")
	svc := NewService(repo, nil)

	ok, err := svc.IsCollaborator(context.Background(), "pl-1", "u2")
	assert.False(t, ok)
	var pe *domain.PersistenceError
	assert.True(t, errors.As(err, &pe))
}
