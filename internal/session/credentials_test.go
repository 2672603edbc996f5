package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/meli-lister/internal/session"
)

func TestCredentials_SetGet(t *testing.T) {
	t.Parallel()

	c := session.NewCredentials("s1")
	c.Set(session.FieldClientID, "id-1")

	v, err := c.Get(session.FieldClientID)
	require.NoError(t, err)
	assert.Equal(t, "id-1", v)
	assert.True(t, c.Has(session.FieldClientID))
	assert.Equal(t, "s1", c.ID())
	assert.True(t, c.IsNew())
}

func TestCredentials_GetMissing(t *testing.T) {
	t.Parallel()

	c := session.NewCredentials("s1")

	_, err := c.Get(session.FieldAccessToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrMissingCredential)

	var missing *session.MissingCredentialError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, session.FieldAccessToken, missing.Field)
	assert.Contains(t, err.Error(), "ACCESS_TOKEN")
}

func TestCredentials_SetEmptyRemoves(t *testing.T) {
	t.Parallel()

	c := session.NewCredentials("s1")
	c.Set(session.FieldUserID, "42")
	c.Set(session.FieldUserID, "")

	assert.False(t, c.Has(session.FieldUserID))
	assert.Empty(t, c.Values())
}

func TestCredentials_Clear(t *testing.T) {
	t.Parallel()

	c := session.NewCredentials("s1")
	for _, f := range session.Fields {
		c.Set(f, "v-"+string(f))
	}
	require.Len(t, c.Values(), len(session.Fields))

	c.Clear()
	for _, f := range session.Fields {
		assert.False(t, c.Has(f), "field %s should be cleared", f)
	}

	// Clearing an already empty store is a no-op.
	c.Clear()
	assert.Empty(t, c.Values())
}

func TestCredentials_ValuesIsCopy(t *testing.T) {
	t.Parallel()

	c := session.NewCredentials("s1")
	c.Set(session.FieldClientID, "id-1")

	vals := c.Values()
	vals[session.FieldClientID] = "mutated"

	v, err := c.Get(session.FieldClientID)
	require.NoError(t, err)
	assert.Equal(t, "id-1", v)
}
