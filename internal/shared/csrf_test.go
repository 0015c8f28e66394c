package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFTokenLifecycle(t *testing.T) {
	manager := NewCSRFManager("test-secret")
	sess := &Session{ID: "session-1"}
	ctx := context.Background()

	token, err := manager.EnsureToken(ctx, sess)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// EnsureToken is stable for the same session.
	again, err := manager.EnsureToken(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	assert.NoError(t, manager.VerifyToken(ctx, sess, token))
	assert.ErrorIs(t, manager.VerifyToken(ctx, sess, "forged"), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, manager.VerifyToken(ctx, sess, ""), ErrCSRFTokenMissing)
	assert.ErrorIs(t, manager.VerifyToken(ctx, nil, token), ErrCSRFTokenMissing)
}

func TestEnsureTokenNilSession(t *testing.T) {
	manager := NewCSRFManager("test-secret")
	_, err := manager.EnsureToken(context.Background(), nil)
	assert.ErrorIs(t, err, ErrCSRFTokenMissing)
}
