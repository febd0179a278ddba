package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelWrappers(t *testing.T) {
	assert.ErrorIs(t, NotFound("playlist %s", "pl-1"), ErrNotFound)
	assert.ErrorIs(t, Forbidden("delete playlist"), ErrForbidden)
	assert.ErrorIs(t, Conflict("collaborator"), ErrConflict)
	assert.ErrorIs(t, Invalid("name"), ErrInvalid)
	assert.Equal(t, "playlist pl-1: not found", NotFound("playlist %s", "pl-1").Error())
}

func TestPersistence_KeepsLogicalErrors(t *testing.T) {
	err := Persistence("get playlist", NotFound("playlist"))
	var pe *PersistenceError
	assert.False(t, errors.As(err, &pe))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersistence_WrapsInfrastructureErrors(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := Persistence("get playlist", cause)

	var pe *PersistenceError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, "get playlist", pe.Op)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, Persistence("noop", nil))
}

func TestDeliveryError(t *testing.T) {
	cause := errors.New("throttled")
	err := error(&DeliveryError{Queue: ExportQueue, Err: cause})
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "deliver to export:songs: throttled", err.Error())
}

func TestPlaylistValidate(t *testing.T) {
	p := &Playlist{Name: "  ", Owner: "u1"}
	assert.ErrorIs(t, p.Validate(), ErrInvalid)

	p = &Playlist{Name: "Road Trip"}
	assert.ErrorIs(t, p.Validate(), ErrInvalid)

	p = &Playlist{Name: "Road Trip", Owner: "u1"}
	assert.NoError(t, p.Validate())
	assert.True(t, p.IsOwnedBy("u1"))
	assert.False(t, p.IsOwnedBy("u2"))
	assert.False(t, p.IsOwnedBy(""))
}
