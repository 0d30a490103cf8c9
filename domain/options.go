package domain

// WithFindProjection specifies which fields to include or exclude from query
// results.
func WithFindProjection(p Projection) FindOption {
	return func(fo *FindOptions) {
		fo.Projection = p
	}
}

// WithFindSort specifies the sort order for query results.
func WithFindSort(s Sort) FindOption {
	return func(fo *FindOptions) {
		fo.Sort = s
	}
}

// WithFindPage sets the window of the sorted results that will be returned.
func WithFindPage(offset, limit int64) FindOption {
	return func(fo *FindOptions) {
		fo.Page = &Page{Offset: offset, Limit: limit}
	}
}

// FindOption configures query behavior through the functional options pattern.
type FindOption func(*FindOptions)

// FindOptions contains parameters for customizing query execution.
type FindOptions struct {
	// Projection specifies which fields to include or exclude from results.
	Projection Projection
	// Sort specifies the sort order for results.
	Sort Sort
	// Page, if set, restricts results to a window.
	Page *Page
}

// WithQueryFilter sets the filter for a [Querier.Query] call.
func WithQueryFilter(f Filter) QueryOption {
	return func(qo *QueryOptions) {
		qo.Filter = f
	}
}

// WithQuerySort sets the sort order for query results.
func WithQuerySort(s Sort) QueryOption {
	return func(qo *QueryOptions) {
		qo.Sort = s
	}
}

// WithQuerySkip sets the number of documents the query should skip.
func WithQuerySkip(s int64) QueryOption {
	return func(qo *QueryOptions) {
		qo.Skip = s
	}
}

// WithQueryLimit sets the maximum number of documents the query should return.
// Zero means no limit.
func WithQueryLimit(l int64) QueryOption {
	return func(qo *QueryOptions) {
		qo.Limit = l
	}
}

// WithQueryProjection sets the projection applied to the selected documents.
func WithQueryProjection(p Projection) QueryOption {
	return func(qo *QueryOptions) {
		qo.Projection = p
	}
}

// WithQueryCap sets the initial capacity of the result buffer.
func WithQueryCap(c int) QueryOption {
	return func(qo *QueryOptions) {
		qo.Cap = c
	}
}

// QueryOption configures [Querier.Query] through the functional options
// pattern.
type QueryOption func(*QueryOptions)

// QueryOptions contains parameters for [Querier.Query].
type QueryOptions struct {
	Filter     Filter
	Sort       Sort
	Skip       int64
	Limit      int64
	Projection Projection
	Cap        int
}

// WithCursorDecoder sets the decoder used by [Cursor.Scan].
func WithCursorDecoder(d Decoder) CursorOption {
	return func(co *CursorOptions) {
		co.Decoder = d
	}
}

// CursorOption configures cursor behavior through the functional options
// pattern.
type CursorOption func(*CursorOptions)

// CursorOptions contains parameters for customizing cursor behavior.
type CursorOptions struct {
	Decoder Decoder
}

// WithIndexKeys sets the key specification of the index.
func WithIndexKeys(k IndexKeys) IndexOption {
	return func(io *IndexOptions) {
		io.Keys = k
	}
}

// WithIndexName sets the index name. Defaults to the mongo naming convention,
// e.g. "author_1_published_year_-1".
func WithIndexName(n string) IndexOption {
	return func(io *IndexOptions) {
		io.Name = n
	}
}

// WithIndexUnique makes the index reject duplicate keys.
func WithIndexUnique(u bool) IndexOption {
	return func(io *IndexOptions) {
		io.Unique = u
	}
}

// WithIndexComparer sets the comparer used to order index keys.
func WithIndexComparer(c Comparer) IndexOption {
	return func(io *IndexOptions) {
		io.Comparer = c
	}
}

// IndexOption configures index creation through the functional options
// pattern.
type IndexOption func(*IndexOptions)

// IndexOptions contains parameters for customizing index creation.
type IndexOptions struct {
	Keys     IndexKeys
	Name     string
	Unique   bool
	Comparer Comparer
}
