package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidListName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"favorites", "watched", "to_watch"} {
		assert.True(t, ValidListName(name), name)
	}
	for _, name := range []string{"", "bookmarked", "Favorites", "to-watch"} {
		assert.False(t, ValidListName(name), name)
	}
}

func TestValidRole(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidRole("user"))
	assert.True(t, ValidRole("admin"))
	assert.False(t, ValidRole("root"))
	assert.False(t, ValidRole(""))
}

func TestEmptyLists_HasExactlyTheFixedKeys(t *testing.T) {
	t.Parallel()

	lists := EmptyLists()
	require.Len(t, lists, 3)
	for _, name := range ListNames {
		ids, ok := lists[name]
		require.True(t, ok, name)
		assert.Empty(t, ids)
		assert.NotNil(t, ids)
	}
}

func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(User{Username: "alice", PasswordHash: "$2a$10$secret", Role: RoleUser})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.NotContains(t, string(b), "password")
}
