package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electroworld/auth-service/internal/application/auth"
)

func TestOutbox_RecordsAndFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	o := NewOutbox()

	require.NoError(t, o.Send(ctx, auth.Notification{Recipient: "a@x.com", Body: "one"}))
	require.NoError(t, o.Send(ctx, auth.Notification{Recipient: "b@x.com", Body: "two"}))
	require.NoError(t, o.Send(ctx, auth.Notification{Recipient: "a@x.com", Body: "three"}))

	last, ok := o.Last("a@x.com")
	require.True(t, ok)
	assert.Equal(t, "three", last.Body)
	assert.Len(t, o.Messages(), 3)

	boom := errors.New("down")
	o.FailWith(boom)
	assert.ErrorIs(t, o.Send(ctx, auth.Notification{Recipient: "a@x.com"}), boom)
	assert.Len(t, o.Messages(), 3)

	_, ok = o.Last("nobody@x.com")
	assert.False(t, ok)
}
