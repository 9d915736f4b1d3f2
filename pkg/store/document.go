package store

// Partition identifies one of the three fixed knowledge domains a query can
// be routed to.
type Partition string

const (
	PartitionDatabase Partition = "database"
	PartitionDocument Partition = "document"
	PartitionWebsite  Partition = "website"
)

// Partitions lists every partition in fan-out order.
var Partitions = []Partition{PartitionDatabase, PartitionDocument, PartitionWebsite}

// Valid reports whether p is one of the three known partitions.
func (p Partition) Valid() bool {
	switch p {
	case PartitionDatabase, PartitionDocument, PartitionWebsite:
		return true
	}
	return false
}

// Content tags narrow retrieval inside the database partition. At most one
// tag is active per query.
const (
	TagCart            = "cart_tag"
	TagProduct         = "product_tag"
	TagProductCategory = "product_category_tag"
	TagOrder           = "order_tag"
	TagPost            = "post_tag"
	TagPostCategory    = "post_category_tag"
)

// Document is a candidate passage returned by similarity search. It is
// request-scoped: created, filtered and re-ranked within one turn, never
// mutated in place.
type Document struct {
	Content   string            `json:"content"`
	Score     float32           `json:"score"`
	Partition Partition         `json:"partition,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// PlaceholderContent is the fixed sentinel substituted whenever filtering
// empties a candidate set. Downstream stages always receive at least this.
const PlaceholderContent = "No data found"

// Placeholder returns the single-element placeholder candidate set.
func Placeholder() []Document {
	return []Document{{Content: PlaceholderContent}}
}
