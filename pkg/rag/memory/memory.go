package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"ecom-support-be/pkg/cache"
	"ecom-support-be/pkg/llm"
	"ecom-support-be/pkg/store"
)

const summaryWordBudget = 200

// sessionRecord is the single TTL-bound value per session. Keeping all four
// fields in one cache entry gives them one expiry clock: any write rewrites
// the whole record with a fresh TTL, and they expire together.
type sessionRecord struct {
	LastMessage   string `json:"last_message"`
	LastSummary   string `json:"last_summary"`
	LastPartition string `json:"last_partition"`
	LastTag       string `json:"last_tag"`
}

// SessionMemory is the per-session conversational state. A read after
// expiry returns the zero record, never an error; a corrupted cache entry is
// treated the same way.
type SessionMemory struct {
	cache    cache.Cache
	provider llm.LLMProvider
	ttl      time.Duration
	logger   *log.Logger

	// locks serializes load-modify-save per session. The whole record is
	// rewritten on every save, so concurrent writers would otherwise clobber
	// each other's fields.
	locks sync.Map
}

func NewSessionMemory(c cache.Cache, provider llm.LLMProvider, ttl time.Duration, logger *log.Logger) *SessionMemory {
	return &SessionMemory{
		cache:    c,
		provider: provider,
		ttl:      ttl,
		logger:   logger,
	}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("chat_session:%s", sessionID)
}

func (m *SessionMemory) lock(sessionID string) *sync.Mutex {
	mu, _ := m.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (m *SessionMemory) load(ctx context.Context, sessionID string) sessionRecord {
	var rec sessionRecord

	raw, err := m.cache.Get(ctx, sessionKey(sessionID))
	if err != nil {
		m.logger.Printf("[WARN] Session read failed for %s: %v", sessionID, err)
		return rec
	}
	if raw == "" {
		return rec
	}

	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		// Malformed entry is treated as absent, not fatal
		m.logger.Printf("[WARN] Malformed session record for %s, discarding: %v", sessionID, err)
		return sessionRecord{}
	}
	return rec
}

func (m *SessionMemory) save(ctx context.Context, sessionID string, rec sessionRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	return m.cache.Set(ctx, sessionKey(sessionID), string(raw), m.ttl)
}

func (m *SessionMemory) GetLastMessage(ctx context.Context, sessionID string) string {
	return m.load(ctx, sessionID).LastMessage
}

func (m *SessionMemory) GetLastSummary(ctx context.Context, sessionID string) string {
	return m.load(ctx, sessionID).LastSummary
}

// GetLastPartition returns the remembered partition, or "" when the record
// expired or the stored value is not a known partition.
func (m *SessionMemory) GetLastPartition(ctx context.Context, sessionID string) store.Partition {
	p := store.Partition(m.load(ctx, sessionID).LastPartition)
	if !p.Valid() {
		return ""
	}
	return p
}

func (m *SessionMemory) GetLastTag(ctx context.Context, sessionID string) string {
	return m.load(ctx, sessionID).LastTag
}

func (m *SessionMemory) SetTag(ctx context.Context, sessionID string, tag string) error {
	mu := m.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	rec := m.load(ctx, sessionID)
	rec.LastTag = tag
	return m.save(ctx, sessionID, rec)
}

func (m *SessionMemory) SetPartition(ctx context.Context, sessionID string, partition store.Partition) error {
	mu := m.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	rec := m.load(ctx, sessionID)
	rec.LastPartition = string(partition)
	return m.save(ctx, sessionID, rec)
}

// RecordTurn overwrites the last message and folds the new exchange into the
// rolling summary. Callers schedule it off the response path; errors are
// returned for the scheduler's error boundary to log.
//
// The summarize call can take seconds, so it runs outside the session lock.
// The record is re-loaded under the lock afterwards and only the message and
// summary fields are merged, so a tag or partition written by the next turn
// while summarization was in flight survives.
func (m *SessionMemory) RecordTurn(ctx context.Context, sessionID, userMessage, botResponse string) error {
	prior := m.load(ctx, sessionID)

	exchange := fmt.Sprintf("User: %s | Bot: %s", userMessage, botResponse)
	summary, err := m.summarize(ctx, prior.LastSummary, exchange)
	if err != nil {
		m.logger.Printf("[WARN] Summarization failed for %s, keeping prior summary: %v", sessionID, err)
		summary = prior.LastSummary
	}

	mu := m.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	rec := m.load(ctx, sessionID)
	rec.LastMessage = userMessage
	rec.LastSummary = summary
	return m.save(ctx, sessionID, rec)
}

func (m *SessionMemory) summarize(ctx context.Context, oldSummary, newExchange string) (string, error) {
	combined := strings.TrimSpace(oldSummary + " " + newExchange)

	prompt := fmt.Sprintf(
		"Summarize the following conversation in no more than %d words while keeping the key details. "+
			"Retain most of the existing summary and fold in the newest exchange.\n\n%s\n\n"+
			"Your summary must be clear, concise, and not exceed the word limit.",
		summaryWordBudget, combined,
	)

	return m.provider.Generate(ctx, prompt, llm.WithTemperature(0.0))
}
