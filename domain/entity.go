package domain

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Field names of a [BookRecord]. They must match any pre-existing dataset
// exactly.
const (
	FieldID            = "_id"
	FieldTitle         = "title"
	FieldAuthor        = "author"
	FieldGenre         = "genre"
	FieldPublishedYear = "published_year"
	FieldPrice         = "price"
	FieldPages         = "pages"
	FieldInStock       = "in_stock"
	FieldPublisher     = "publisher"
)

// BookRecord is a single document of the books collection. The bson tags are
// used both by the mongo driver and by [Decoder] implementations.
type BookRecord struct {
	ID            any     `bson:"_id,omitempty" json:"_id,omitempty"`
	Title         string  `bson:"title" json:"title"`
	Author        string  `bson:"author" json:"author"`
	Genre         string  `bson:"genre" json:"genre"`
	PublishedYear int     `bson:"published_year" json:"published_year"`
	Price         float64 `bson:"price" json:"price"`
	Pages         int     `bson:"pages" json:"pages"`
	InStock       bool    `bson:"in_stock" json:"in_stock"`
	Publisher     string  `bson:"publisher" json:"publisher"`
}

// Document is the untyped shape of a stored or derived document.
type Document = map[string]any

// Kind describes the values a field accepts.
type Kind uint8

const (
	// KindAny accepts any value. Used by _id.
	KindAny Kind = iota
	// KindString accepts strings.
	KindString
	// KindInteger accepts integer numbers.
	KindInteger
	// KindNumber accepts any number.
	KindNumber
	// KindBool accepts booleans.
	KindBool
)

// BookFields maps every addressable field of a [BookRecord] to its kind.
var BookFields = map[string]Kind{
	FieldID:            KindAny,
	FieldTitle:         KindString,
	FieldAuthor:        KindString,
	FieldGenre:         KindString,
	FieldPublishedYear: KindInteger,
	FieldPrice:         KindNumber,
	FieldPages:         KindInteger,
	FieldInStock:       KindBool,
	FieldPublisher:     KindString,
}

// Changes maps field names to the values an update should set.
type Changes = map[string]any

// Sort represents an ordered list of fields which should be used to sort query
// results, applied in sequence.
type Sort = []SortName

// Sort orders.
const (
	Ascending  int64 = 1
	Descending int64 = -1
)

// SortName represents a single field and the order which should be used to sort
// it. Order must be either [Ascending] or [Descending].
type SortName struct {
	Key   string
	Order int64
}

// Page selects a window of a result set. Offset documents are skipped and at
// most Limit are returned.
type Page struct {
	Offset int64
	Limit  int64
}

// UpdateResult reports the outcome of an update. A zero MatchedCount is a
// normal outcome.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
}

// DeleteResult reports the outcome of a delete.
type DeleteResult struct {
	DeletedCount int64
}

// InsertResult lists the keys assigned to inserted documents, in input order.
type InsertResult struct {
	InsertedIDs []any
}

// IndexKey is a single component of an index key specification.
type IndexKey struct {
	Field     string
	Direction int64
}

// IndexKeys is an ordered index key specification.
type IndexKeys = []IndexKey

// IndexDescriptor describes an existing index.
type IndexDescriptor struct {
	Name   string
	Keys   IndexKeys
	Unique bool
}

// ExecutionStats is what the store's planner reports for a query. Raw keeps
// the full store reply, when there is one.
type ExecutionStats struct {
	Stage         string
	IndexName     string
	Returned      int64
	KeysExamined  int64
	DocsExamined  int64
	ExecutionTime time.Duration
	Raw           Document
}

// CursorFactory represents a function that constructs [Cursor] instances from a
// set of documents with configurable options.
type CursorFactory = func(context.Context, []Document, ...CursorOption) (Cursor, error)

// IndexFactory represents a function that constructs [Index] instances with
// configurable options.
type IndexFactory = func(...IndexOption) (Index, error)

// IndexName returns the conventional name of an index over keys, joining
// each field and direction with underscores.
func IndexName(keys IndexKeys) string {
	parts := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		parts = append(parts, k.Field, strconv.FormatInt(k.Direction, 10))
	}
	return strings.Join(parts, "_")
}
