package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey("sk-user-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "sk-user-"))
	assert.Len(t, key, len("sk-user-")+48)
}

func TestGenerateRecordID_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 2000)
	for range 2000 {
		id, err := GenerateRecordID("tsk")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, "tsk_"))
		assert.Len(t, id, len("tsk_")+recordIDLength)
		for _, c := range strings.TrimPrefix(id, "tsk_") {
			assert.True(t, strings.ContainsRune(base62Chars, c))
		}
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
