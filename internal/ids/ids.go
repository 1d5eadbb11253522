package ids

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var messageSeq atomic.Uint64

func NewUserID() string {
	return "user-" + uuid.NewString()
}

func NewChatID() string {
	return "chat-" + uuid.NewString()
}

func NewGroupID() string {
	return "group-" + uuid.NewString()
}

// NewMessageID combines the creation time with a process-wide sequence so
// that ids stay strictly ordered even when many messages share a millisecond.
func NewMessageID(at time.Time) string {
	return fmt.Sprintf("%d-%08d", at.UnixMilli(), messageSeq.Add(1))
}
