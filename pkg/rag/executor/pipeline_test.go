package executor

import (
	"context"
	"hash/fnv"
	"log"
	"os"
	"strings"
	"sync"
	"testing"

	"ecom-support-be/pkg/embedding"
	"ecom-support-be/pkg/llm"
	"ecom-support-be/pkg/rag/classify"
	"ecom-support-be/pkg/rag/response"
	"ecom-support-be/pkg/rag/retrieve"
	"ecom-support-be/pkg/store"
	"ecom-support-be/pkg/vectorstore"
)

// fakeSession is an in-memory SessionState plus classify.TagStore.
type fakeSession struct {
	lastMessage   string
	lastSummary   string
	lastPartition store.Partition
	lastTag       string
}

func (s *fakeSession) GetLastMessage(context.Context, string) string            { return s.lastMessage }
func (s *fakeSession) GetLastSummary(context.Context, string) string            { return s.lastSummary }
func (s *fakeSession) GetLastPartition(context.Context, string) store.Partition { return s.lastPartition }
func (s *fakeSession) SetPartition(_ context.Context, _ string, p store.Partition) error {
	s.lastPartition = p
	return nil
}
func (s *fakeSession) GetLastTag(context.Context, string) string { return s.lastTag }
func (s *fakeSession) SetTag(_ context.Context, _ string, tag string) error {
	s.lastTag = tag
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	calls   []vectorstore.SearchParams
	byParts map[store.Partition][]store.Document
}

func (f *fakeStore) Search(_ context.Context, params vectorstore.SearchParams) ([]store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, params)
	return f.byParts[params.Partition], nil
}

func (f *fakeStore) queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Query)
	}
	return out
}

type fakeEmbedder struct{}

func (fakeEmbedder) Generate(text string, _ string) (*embedding.EmbeddingResponse, error) {
	values := make([]float32, 32)
	for i, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		values[(int(h.Sum32())+i)%len(values)] += 1
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: embedding.NormalizeVector(values)},
	}, nil
}

type fixedClassifier struct {
	partition store.Partition
	calls     int
}

func (c *fixedClassifier) Classify(context.Context, string) store.Partition {
	c.calls++
	return c.partition
}

// answerLLM returns a canned answer for synthesis calls.
type answerLLM struct {
	answer string
}

func (a *answerLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return a.answer, nil
}
func (a *answerLLM) Generate(context.Context, string, ...llm.Option) (string, error) {
	return a.answer, nil
}

type capturingRecorder struct {
	mu       sync.Mutex
	sessions []string
	messages []string
	answers  []string
}

func (r *capturingRecorder) TurnCompleted(sessionID, userMessage, botResponse string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, sessionID)
	r.messages = append(r.messages, userMessage)
	r.answers = append(r.answers, botResponse)
}

func (r *capturingRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type fakeCart struct {
	payload string
	err     error
	calls   int
	lastID  int64
}

func (f *fakeCart) GetCart(_ context.Context, customerID int64) (string, error) {
	f.calls++
	f.lastID = customerID
	return f.payload, f.err
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func newTestPipeline(session *fakeSession, fs *fakeStore, cl *fixedClassifier, answer string, rec TurnRecorder, cart *fakeCart) *Pipeline {
	logger := testLogger()
	model := &answerLLM{answer: answer}
	engine := retrieve.NewEngine(fs, fakeEmbedder{}, cl, logger)

	cfg := Config{
		Session:   session,
		FollowUp:  classify.RegexFollowUpDetector{},
		Tags:      classify.NewTagExtractor(session, logger),
		Engine:    engine,
		Generator: response.NewGenerator(model, "Trailhead Gear", logger),
		Recorder:  rec,
		Platform:  "wordpress",
		Logger:    logger,
	}
	if cart != nil {
		cfg.Cart = cart
	}
	return NewPipeline(cfg)
}

func TestHandleTurnGreetingShortCircuits(t *testing.T) {
	fs := &fakeStore{byParts: map[store.Partition][]store.Document{}}
	rec := &capturingRecorder{}
	p := newTestPipeline(&fakeSession{}, fs, &fixedClassifier{}, "unused", rec, nil)

	answer := p.HandleTurn(context.Background(), "s1", "hello", 0)

	if !strings.Contains(answer, "Hello") {
		t.Errorf("greeting answer = %q", answer)
	}
	if len(fs.queries()) != 0 {
		t.Errorf("retrieval ran for a greeting")
	}
	// Greetings skip retrieval but still land in session memory
	if rec.count() != 1 {
		t.Fatalf("recorded %d turns for a greeting, want 1", rec.count())
	}
	if rec.messages[0] != "hello" || rec.answers[0] != answer {
		t.Errorf("recorded turn = (%q, %q)", rec.messages[0], rec.answers[0])
	}
}

func TestHandleTurnScopedOrderLookup(t *testing.T) {
	fs := &fakeStore{byParts: map[store.Partition][]store.Document{
		store.PartitionDatabase: {
			{Content: "order #1042 shipped, customer id = 42"},
			{Content: "order #1043 processing, customer id = 7"},
		},
	}}
	cl := &fixedClassifier{partition: store.PartitionWebsite}
	session := &fakeSession{}
	rec := &capturingRecorder{}
	p := newTestPipeline(session, fs, cl, "Your order shipped 📦", rec, nil)

	answer := p.HandleTurn(context.Background(), "s1", "where is my order", 42)

	if answer != "Your order shipped 📦" {
		t.Fatalf("answer = %q", answer)
	}
	if cl.calls != 0 {
		t.Errorf("classifier ran %d times; ownership scope pins the database partition", cl.calls)
	}

	queries := fs.queries()
	if len(queries) != 1 {
		t.Fatalf("store searched %d times, want 1", len(queries))
	}
	if !strings.Contains(queries[0], "customer/user id = 42") {
		t.Errorf("search query %q missing ownership clause", queries[0])
	}

	if session.lastTag != store.TagOrder {
		t.Errorf("resolved tag = %q, want %q", session.lastTag, store.TagOrder)
	}
	if session.lastPartition != store.PartitionDatabase {
		t.Errorf("persisted partition = %q, want database", session.lastPartition)
	}
	if rec.count() != 1 {
		t.Fatalf("recorded %d turns, want 1", rec.count())
	}
	if rec.messages[0] != "where is my order" || rec.answers[0] != answer {
		t.Errorf("recorded turn = (%q, %q)", rec.messages[0], rec.answers[0])
	}
}

func TestHandleTurnFollowUpReusesMemory(t *testing.T) {
	fs := &fakeStore{byParts: map[store.Partition][]store.Document{
		store.PartitionDatabase: {{Content: "product: trail runner shoes, price $89"}},
	}}
	cl := &fixedClassifier{partition: store.PartitionWebsite}
	session := &fakeSession{
		lastMessage:   "show me running shoes",
		lastPartition: store.PartitionDatabase,
		lastTag:       store.TagProduct,
	}
	rec := &capturingRecorder{}
	p := newTestPipeline(session, fs, cl, "The trail runners are $89 👟", rec, nil)

	answer := p.HandleTurn(context.Background(), "s1", "what about something cheaper", 0)

	if answer != "The trail runners are $89 👟" {
		t.Fatalf("answer = %q", answer)
	}
	if cl.calls != 0 {
		t.Errorf("classifier ran on a follow-up; the remembered partition should pin routing")
	}

	queries := fs.queries()
	if len(queries) != 1 {
		t.Fatalf("store searched %d times, want 1", len(queries))
	}
	// Retrieval runs against the remembered message, not the elliptical text
	if queries[0] != "show me running shoes" {
		t.Errorf("search query = %q, want remembered previous message", queries[0])
	}
	if session.lastTag != store.TagProduct {
		t.Errorf("follow-up rewrote the tag to %q", session.lastTag)
	}
}

func TestHandleTurnEmptyResultsUseFallback(t *testing.T) {
	fs := &fakeStore{byParts: map[store.Partition][]store.Document{}}
	cl := &fixedClassifier{partition: store.PartitionWebsite}
	rec := &capturingRecorder{}
	p := newTestPipeline(&fakeSession{}, fs, cl, "unused", rec, nil)

	answer := p.HandleTurn(context.Background(), "s1", "tell me about your company", 0)

	if answer != response.FallbackMessage {
		t.Fatalf("answer = %q, want fallback", answer)
	}
	if rec.count() != 1 {
		t.Errorf("fallback turn not recorded")
	}
}

func TestHandleTurnLiveCartShortcut(t *testing.T) {
	fs := &fakeStore{byParts: map[store.Partition][]store.Document{}}
	cl := &fixedClassifier{partition: store.PartitionWebsite}
	cart := &fakeCart{payload: `{"items":[{"name":"trail runner shoes","qty":1}]}`}
	session := &fakeSession{}
	rec := &capturingRecorder{}
	p := newTestPipeline(session, fs, cl, "You have one item in your cart 🛒", rec, cart)

	answer := p.HandleTurn(context.Background(), "s1", "what is in my cart", 42)

	if answer != "You have one item in your cart 🛒" {
		t.Fatalf("answer = %q", answer)
	}
	if cart.calls != 1 || cart.lastID != 42 {
		t.Errorf("cart called %d times with id %d, want once with 42", cart.calls, cart.lastID)
	}
	if len(fs.queries()) != 0 {
		t.Errorf("broad retrieval ran despite the live-cart shortcut")
	}
	if session.lastPartition != store.PartitionDatabase {
		t.Errorf("persisted partition = %q, want database", session.lastPartition)
	}
}

func TestHandleTurnEmptyCartFallsBack(t *testing.T) {
	fs := &fakeStore{byParts: map[store.Partition][]store.Document{}}
	cart := &fakeCart{payload: ""}
	rec := &capturingRecorder{}
	p := newTestPipeline(&fakeSession{}, fs, &fixedClassifier{}, "unused", rec, cart)

	answer := p.HandleTurn(context.Background(), "s1", "what is in my cart", 42)

	if answer != response.FallbackMessage {
		t.Fatalf("answer = %q, want fallback for an empty cart", answer)
	}
}

func TestHandleTurnBlankMessage(t *testing.T) {
	rec := &capturingRecorder{}
	p := newTestPipeline(&fakeSession{}, &fakeStore{}, &fixedClassifier{}, "unused", rec, nil)

	if got := p.HandleTurn(context.Background(), "s1", "   ", 0); got != response.FallbackMessage {
		t.Fatalf("answer = %q, want fallback", got)
	}
	if rec.count() != 0 {
		t.Errorf("blank message recorded as a turn")
	}
}
