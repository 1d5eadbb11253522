package ids

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMessageIDsDistinctWithinBurst(t *testing.T) {
	// All ids minted in the same millisecond must still be distinct and
	// strictly increasing.
	now := time.Now()
	seen := make(map[string]bool)
	var prev string
	for i := 0; i < 1000; i++ {
		id := NewMessageID(now)
		assert.False(t, seen[id])
		seen[id] = true
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestChatIDPrefixes(t *testing.T) {
	assert.Contains(t, NewChatID(), "chat-")
	assert.Contains(t, NewGroupID(), "group-")
	assert.NotEqual(t, NewChatID(), NewChatID())
}
