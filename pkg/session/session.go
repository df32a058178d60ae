// Package session tracks per-chat conversation state: which multi-step flow
// the chat is in (admin prompts, top ups, imports) and the values collected
// so far.
//
// State lives in Redis through pkg/cache so a restart does not drop chats
// mid-flow, with an in-process map in front of it so a cache outage degrades
// to per-process state instead of breaking the bot.
//
// Usage:
//
//	chat := session.Load(update.Message.Chat.ID)
//	chat.SetState("admin.add_stock")
//	chat.SetField("category_id", "42")
//	chat.Save()
package session

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

// TTL bounds how long an abandoned flow survives.
const TTL = 2 * time.Hour

// StateNone means the chat is not inside any flow.
const StateNone = ""

// Chat is the conversation state of one chat.
type Chat struct {
	ChatID int64             `json:"chat_id"`
	State  string            `json:"state"`
	Data   map[string]string `json:"data"`
}

var (
	mu    sync.RWMutex
	local = map[int64]*Chat{}
)

func cacheKey(chatID int64) string {
	return fmt.Sprintf("bazaar:chat:%d", chatID)
}

// Load returns the state of chatID, falling back to Redis when the process
// has not seen the chat yet, and to a fresh empty state otherwise.
func Load(chatID int64) *Chat {
	mu.RLock()
	if c, ok := local[chatID]; ok {
		mu.RUnlock()
		return c
	}
	mu.RUnlock()

	c := &Chat{ChatID: chatID, Data: map[string]string{}}
	var raw json.RawMessage
	if cache.Get(cacheKey(chatID), &raw) {
		if err := json.Unmarshal(raw, c); err != nil {
			logger.Warn("session: corrupt chat state dropped", "chat_id", chatID, "error", err)
			c = &Chat{ChatID: chatID, Data: map[string]string{}}
		}
	}
	if c.Data == nil {
		c.Data = map[string]string{}
	}

	mu.Lock()
	local[chatID] = c
	mu.Unlock()
	return c
}

// Save persists the chat state. Cache failures are logged, not returned:
// the in-process copy stays authoritative for this process.
func (c *Chat) Save() {
	mu.Lock()
	local[c.ChatID] = c
	mu.Unlock()

	raw, err := json.Marshal(c)
	if err != nil {
		logger.Warn("session: marshal chat state", "chat_id", c.ChatID, "error", err)
		return
	}
	if err := cache.Set(cacheKey(c.ChatID), json.RawMessage(raw), TTL); err != nil {
		logger.Debug("session: cache write failed", "chat_id", c.ChatID, "error", err)
	}
}

// Reset drops the chat back to the idle state.
func Reset(chatID int64) {
	mu.Lock()
	delete(local, chatID)
	mu.Unlock()

	if err := cache.Forget(cacheKey(chatID)); err != nil {
		logger.Debug("session: cache delete failed", "chat_id", chatID, "error", err)
	}
}

// SetState moves the chat into a flow state. Save still has to be called.
func (c *Chat) SetState(state string) { c.State = state }

// InState reports whether the chat is in the given state.
func (c *Chat) InState(state string) bool { return c.State == state }

// SetField stores one collected value.
func (c *Chat) SetField(key, value string) {
	if c.Data == nil {
		c.Data = map[string]string{}
	}
	c.Data[key] = value
}

// Field reads one collected value.
func (c *Chat) Field(key string) string { return c.Data[key] }

// FieldUint reads one collected value as an id. Returns 0 when absent or
// malformed.
func (c *Chat) FieldUint(key string) uint {
	var n uint
	if _, err := fmt.Sscanf(c.Data[key], "%d", &n); err != nil {
		return 0
	}
	return n
}
