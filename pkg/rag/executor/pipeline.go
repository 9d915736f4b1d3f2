package executor

import (
	"context"
	"log"
	"strings"
	"time"

	"ecom-support-be/pkg/commerce"
	"ecom-support-be/pkg/rag/classify"
	"ecom-support-be/pkg/rag/response"
	"ecom-support-be/pkg/rag/retrieve"
	"ecom-support-be/pkg/store"
)

// SessionState is the slice of session memory the pipeline reads and writes
// on the request path. Recording the finished turn goes through TurnRecorder
// instead.
type SessionState interface {
	GetLastMessage(ctx context.Context, sessionID string) string
	GetLastSummary(ctx context.Context, sessionID string) string
	GetLastPartition(ctx context.Context, sessionID string) store.Partition
	SetPartition(ctx context.Context, sessionID string, partition store.Partition) error
}

// TurnRecorder schedules the post-turn memory write. Implementations must
// return immediately: the user already has their answer.
type TurnRecorder interface {
	TurnCompleted(sessionID, userMessage, botResponse string)
}

// Timeouts are the per-call budgets. Model calls get the longer budget;
// stores, caches and the commerce API the shorter one.
type Timeouts struct {
	LLM time.Duration
	IO  time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{LLM: 8 * time.Second, IO: 5 * time.Second}
}

// Pipeline is the conversational orchestrator: one call per user turn, one
// answer out, and nothing past its boundary ever sees an error or a panic.
type Pipeline struct {
	session   SessionState
	followUp  classify.FollowUpDetector
	tags      *classify.TagExtractor
	engine    *retrieve.Engine
	generator *response.Generator
	cart      commerce.CartClient
	recorder  TurnRecorder
	platform  string
	timeouts  Timeouts
	logger    *log.Logger
}

type Config struct {
	Session   SessionState
	FollowUp  classify.FollowUpDetector
	Tags      *classify.TagExtractor
	Engine    *retrieve.Engine
	Generator *response.Generator
	Cart      commerce.CartClient
	Recorder  TurnRecorder
	Platform  string
	Timeouts  Timeouts
	Logger    *log.Logger
}

func NewPipeline(cfg Config) *Pipeline {
	if cfg.Timeouts.LLM == 0 {
		cfg.Timeouts = DefaultTimeouts()
	}
	return &Pipeline{
		session:   cfg.Session,
		followUp:  cfg.FollowUp,
		tags:      cfg.Tags,
		engine:    cfg.Engine,
		generator: cfg.Generator,
		cart:      cfg.Cart,
		recorder:  cfg.Recorder,
		platform:  cfg.Platform,
		timeouts:  cfg.Timeouts,
		logger:    cfg.Logger,
	}
}

// HandleTurn answers one user message. It is synchronous from the caller's
// perspective; only the post-turn memory write runs detached.
func (p *Pipeline) HandleTurn(ctx context.Context, sessionID, message string, userID int64) (answer string) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Printf("[ERROR] Turn for session %s panicked: %v", sessionID, r)
			answer = response.FallbackMessage
		}
	}()

	message = strings.TrimSpace(message)
	if message == "" {
		return response.FallbackMessage
	}

	if reply, ok := classify.GreetingReply(message); ok {
		p.recorder.TurnCompleted(sessionID, message, reply)
		return reply
	}

	scope := classify.AttachScope(message, userID)
	prevMessage := p.session.GetLastMessage(ctx, sessionID)

	isFollowUp := p.detectFollowUp(ctx, prevMessage, message)
	tag := p.tags.Resolve(ctx, sessionID, message, isFollowUp)

	docs, partition := p.retrieve(ctx, sessionID, message, prevMessage, scope, tag, isFollowUp)

	if err := p.session.SetPartition(ctx, sessionID, partition); err != nil {
		p.logger.Printf("[WARN] Failed to persist partition for session %s: %v", sessionID, err)
	}

	summary := p.session.GetLastSummary(ctx, sessionID)

	llmCtx, cancel := context.WithTimeout(ctx, p.timeouts.LLM)
	defer cancel()
	answer = p.generator.Answer(llmCtx, message, docs, summary, prevMessage)

	p.recorder.TurnCompleted(sessionID, message, answer)
	return answer
}

func (p *Pipeline) detectFollowUp(ctx context.Context, prevMessage, message string) bool {
	if prevMessage == "" {
		return false
	}
	llmCtx, cancel := context.WithTimeout(ctx, p.timeouts.LLM)
	defer cancel()
	return p.followUp.IsFollowUp(llmCtx, prevMessage, message)
}

// retrieve picks between the live-cart shortcut, follow-up continuation, and
// a fresh staged run.
func (p *Pipeline) retrieve(ctx context.Context, sessionID, message, prevMessage string, scope classify.ScopeResult, tag string, isFollowUp bool) ([]store.Document, store.Partition) {
	if scope.Attached && tag == store.TagCart && p.cart != nil && commerce.SupportsLiveCart(p.platform) {
		return p.liveCart(ctx, message, scope.UserID), store.PartitionDatabase
	}

	req := retrieve.Request{
		Query:  scope.Query,
		Tag:    tag,
		Scoped: scope.Attached,
		UserID: scope.UserID,
	}

	switch {
	case isFollowUp:
		// Continuation: retrieval reruns against the remembered message on
		// the remembered partition. The current text is still what the model
		// answers.
		req.Query = prevMessage
		req.Pinned = p.session.GetLastPartition(ctx, sessionID)
	case scope.Attached:
		// Personal records live in the database partition only.
		req.Pinned = store.PartitionDatabase
	}

	result := p.engine.Retrieve(ctx, req)
	return result.Documents, result.Partition
}

// liveCart wraps the commerce API's current cart as the sole candidate and
// sends it straight to re-ranking. Failure or an empty cart degrades to the
// placeholder like any other empty stage.
func (p *Pipeline) liveCart(ctx context.Context, message string, userID int64) []store.Document {
	ioCtx, cancel := context.WithTimeout(ctx, p.timeouts.IO)
	defer cancel()

	raw, err := p.cart.GetCart(ioCtx, userID)
	if err != nil {
		p.logger.Printf("[ERROR] Live cart lookup for user %d failed: %v", userID, err)
		return store.Placeholder()
	}
	if strings.TrimSpace(raw) == "" {
		return store.Placeholder()
	}

	docs := []store.Document{{Content: raw, Partition: store.PartitionDatabase}}
	return p.engine.Rerank(message, docs, retrieve.DefaultLimits().Third)
}
