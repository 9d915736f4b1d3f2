package retrieve

import (
	"context"
	"hash/fnv"
	"log"
	"os"
	"strings"
	"sync"
	"testing"

	"ecom-support-be/pkg/embedding"
	"ecom-support-be/pkg/store"
	"ecom-support-be/pkg/vectorstore"
)

type fakeStore struct {
	mu      sync.Mutex
	calls   []vectorstore.SearchParams
	byParts map[store.Partition][]store.Document
	err     error
}

func (f *fakeStore) Search(_ context.Context, params vectorstore.SearchParams) ([]store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	return f.byParts[params.Partition], nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
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

func (c *fixedClassifier) Classify(_ context.Context, _ string) store.Partition {
	c.calls++
	return c.partition
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func docsOf(contents ...string) []store.Document {
	docs := make([]store.Document, 0, len(contents))
	for _, c := range contents {
		docs = append(docs, store.Document{Content: c})
	}
	return docs
}

func TestRetrievePinnedSkipsClassification(t *testing.T) {
	fs := &fakeStore{byParts: map[store.Partition][]store.Document{
		store.PartitionDatabase: docsOf("order #1042 shipped, customer id = 42"),
	}}
	cl := &fixedClassifier{partition: store.PartitionWebsite}
	e := NewEngine(fs, fakeEmbedder{}, cl, testLogger())

	res := e.Retrieve(context.Background(), Request{
		Query:  "where is my order and where customer/user id = 42",
		Pinned: store.PartitionDatabase,
		Tag:    store.TagOrder,
		Scoped: true,
		UserID: 42,
	})

	if cl.calls != 0 {
		t.Errorf("classifier called %d times on a pinned request, want 0", cl.calls)
	}
	if fs.callCount() != 1 {
		t.Errorf("store searched %d times, want 1", fs.callCount())
	}
	if fs.calls[0].Partition != store.PartitionDatabase {
		t.Errorf("searched partition %s, want database", fs.calls[0].Partition)
	}
	if fs.calls[0].TagFilter != store.TagOrder {
		t.Errorf("tag filter %q not forwarded", fs.calls[0].TagFilter)
	}
	if res.Partition != store.PartitionDatabase {
		t.Errorf("result partition = %s, want database", res.Partition)
	}
	if len(res.Documents) != 1 || !strings.Contains(res.Documents[0].Content, "#1042") {
		t.Errorf("unexpected documents: %+v", res.Documents)
	}
}

func TestRetrieveFansOutAndKeepsWinner(t *testing.T) {
	fs := &fakeStore{byParts: map[store.Partition][]store.Document{
		store.PartitionDatabase: docsOf("product: boots"),
		store.PartitionDocument: docsOf("returns are accepted within 30 days"),
		store.PartitionWebsite:  docsOf("about us"),
	}}
	cl := &fixedClassifier{partition: store.PartitionDocument}
	e := NewEngine(fs, fakeEmbedder{}, cl, testLogger())

	res := e.Retrieve(context.Background(), Request{
		Query: "returns policy",
		Tag:   store.TagOrder, // suppress lexical narrowing; fan-out is under test
	})

	if cl.calls != 1 {
		t.Errorf("classifier called %d times, want 1", cl.calls)
	}
	if fs.callCount() != 3 {
		t.Errorf("store searched %d times, want one per partition", fs.callCount())
	}
	if res.Partition != store.PartitionDocument {
		t.Errorf("result partition = %s, want document", res.Partition)
	}
	if len(res.Documents) != 1 || !strings.Contains(res.Documents[0].Content, "returns") {
		t.Errorf("winner partition documents not kept: %+v", res.Documents)
	}
}

func TestRetrieveOwnershipFilter(t *testing.T) {
	fs := &fakeStore{byParts: map[store.Partition][]store.Document{
		store.PartitionDatabase: docsOf(
			"order #1042 shipped, customer id = 42",
			"order #1043 processing, customer id = 7",
			"order #1044 delivered, user id: 42",
		),
	}}
	e := NewEngine(fs, fakeEmbedder{}, &fixedClassifier{partition: store.PartitionDatabase}, testLogger())

	res := e.Retrieve(context.Background(), Request{
		Query:  "my orders and where customer/user id = 42",
		Pinned: store.PartitionDatabase,
		Tag:    store.TagOrder,
		Scoped: true,
		UserID: 42,
	})

	if len(res.Documents) != 2 {
		t.Fatalf("got %d documents, want 2 owned by user 42: %+v", len(res.Documents), res.Documents)
	}
	for _, doc := range res.Documents {
		if strings.Contains(doc.Content, "customer id = 7") {
			t.Errorf("leaked another customer's record: %q", doc.Content)
		}
	}
}

func TestRetrieveScopedOffDatabaseSkipsOwnershipFilter(t *testing.T) {
	// A scoped follow-up can arrive pinned to a shared partition. Shared
	// content never carries customer identifiers, so it must survive.
	fs := &fakeStore{byParts: map[store.Partition][]store.Document{
		store.PartitionDocument: docsOf(
			"returns are accepted within 30 days of delivery",
			"refunds are issued to the original payment method",
		),
	}}
	e := NewEngine(fs, fakeEmbedder{}, &fixedClassifier{partition: store.PartitionDatabase}, testLogger())

	res := e.Retrieve(context.Background(), Request{
		Query:  "what about my other purchased items, any others and where customer/user id = 42",
		Pinned: store.PartitionDocument,
		Scoped: true,
		UserID: 42,
	})

	if res.Partition != store.PartitionDocument {
		t.Fatalf("result partition = %s, want document", res.Partition)
	}
	if len(res.Documents) == 0 || res.Documents[0].Content == store.PlaceholderContent {
		t.Fatalf("shared-partition documents dropped by the ownership filter: %+v", res.Documents)
	}
}

func TestRetrieveOwnershipFilterEmptiesToPlaceholder(t *testing.T) {
	fs := &fakeStore{byParts: map[store.Partition][]store.Document{
		store.PartitionDatabase: docsOf("order #1043 processing, customer id = 7"),
	}}
	e := NewEngine(fs, fakeEmbedder{}, &fixedClassifier{partition: store.PartitionDatabase}, testLogger())

	res := e.Retrieve(context.Background(), Request{
		Query:  "my orders",
		Pinned: store.PartitionDatabase,
		Scoped: true,
		UserID: 42,
	})

	if len(res.Documents) != 1 || res.Documents[0].Content != store.PlaceholderContent {
		t.Fatalf("want single placeholder document, got %+v", res.Documents)
	}
}

func TestRetrieveEmptyStoreYieldsPlaceholder(t *testing.T) {
	fs := &fakeStore{byParts: map[store.Partition][]store.Document{}}
	e := NewEngine(fs, fakeEmbedder{}, &fixedClassifier{partition: store.PartitionWebsite}, testLogger())

	res := e.Retrieve(context.Background(), Request{Query: "tell me about your company"})

	if len(res.Documents) != 1 || res.Documents[0].Content != store.PlaceholderContent {
		t.Fatalf("want single placeholder document, got %+v", res.Documents)
	}
}

func TestRetrieveStoreErrorYieldsPlaceholder(t *testing.T) {
	fs := &fakeStore{err: context.DeadlineExceeded}
	e := NewEngine(fs, fakeEmbedder{}, &fixedClassifier{partition: store.PartitionDatabase}, testLogger())

	res := e.Retrieve(context.Background(), Request{
		Query:  "where is my order",
		Pinned: store.PartitionDatabase,
	})

	if len(res.Documents) != 1 || res.Documents[0].Content != store.PlaceholderContent {
		t.Fatalf("want single placeholder document, got %+v", res.Documents)
	}
}

func TestRerankOrdersByRelevance(t *testing.T) {
	e := NewEngine(&fakeStore{}, fakeEmbedder{}, &fixedClassifier{}, testLogger())

	docs := docsOf(
		"waterproof hiking boots for mountain trails",
		"ceramic coffee mug set",
		"wool socks for winter",
	)
	ranked := e.Rerank("waterproof hiking boots for mountain trails", docs, 2)

	if len(ranked) != 2 {
		t.Fatalf("got %d documents, want 2", len(ranked))
	}
	if !strings.Contains(ranked[0].Content, "boots") {
		t.Errorf("most relevant document not first: %+v", ranked)
	}
}

func TestRerankEmptyYieldsPlaceholder(t *testing.T) {
	e := NewEngine(&fakeStore{}, fakeEmbedder{}, &fixedClassifier{}, testLogger())

	ranked := e.Rerank("anything", nil, 5)
	if len(ranked) != 1 || ranked[0].Content != store.PlaceholderContent {
		t.Fatalf("want single placeholder document, got %+v", ranked)
	}
}
