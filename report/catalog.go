package report

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vinicius-lino-figueiredo/bookquery/adapter/cursor"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// Sections of the catalog, in the order they run.
const (
	SectionCRUD        = "crud"
	SectionAdvanced    = "advanced"
	SectionAggregation = "aggregation"
	SectionIndexing    = "indexing"
	SectionAdditional  = "additional"
)

const pageSize = 5

var (
	titleAuthorPrice = domain.WithoutID(domain.Include(domain.FieldTitle, domain.FieldAuthor, domain.FieldPrice))
	titlePrice       = domain.WithoutID(domain.Include(domain.FieldTitle, domain.FieldPrice))
	byPriceAsc       = domain.Sort{{Key: domain.FieldPrice, Order: domain.Ascending}}
	byPriceDesc      = domain.Sort{{Key: domain.FieldPrice, Order: domain.Descending}}
)

// Catalog returns every report, in run order.
func Catalog() []Report {
	return []Report{
		findReport(SectionCRUD, "fiction", "All Fiction books",
			domain.Where(domain.Eq(domain.FieldGenre, "Fiction"))),
		findReport(SectionCRUD, "after-2000", "Books published after 2000",
			domain.Where(domain.Gt(domain.FieldPublishedYear, 2000))),
		findReport(SectionCRUD, "by-rowling", "Books by J.K. Rowling",
			domain.Where(domain.Eq(domain.FieldAuthor, "J.K. Rowling"))),
		{
			Section: SectionCRUD,
			Name:    "update-price",
			Title:   "Updating price of '1984'",
			Mutates: true,
			Run:     updatePrice,
		},
		{
			Section: SectionCRUD,
			Name:    "delete-example",
			Title:   "Deleting 'The Great Gatsby'",
			Mutates: true,
			Manual:  true,
			Run:     deleteExample,
		},

		findReport(SectionAdvanced, "in-stock-after-2010", "Books in stock and published after 2010",
			domain.Where(
				domain.Eq(domain.FieldInStock, true),
				domain.Gt(domain.FieldPublishedYear, 2010),
			)),
		findReport(SectionAdvanced, "projection", "Books with projection (title, author, price only)",
			nil, domain.WithFindProjection(titleAuthorPrice)),
		findReport(SectionAdvanced, "price-asc", "Books sorted by price (ascending)",
			nil, domain.WithFindProjection(titlePrice), domain.WithFindSort(byPriceAsc)),
		findReport(SectionAdvanced, "price-desc", "Books sorted by price (descending)",
			nil, domain.WithFindProjection(titlePrice), domain.WithFindSort(byPriceDesc)),
		pageReport(1),
		pageReport(2),
		pageReport(3),

		aggregateReport(SectionAggregation, "avg-price-by-genre", "Average price of books by genre", AveragePriceByGenre()),
		aggregateReport(SectionAggregation, "top-author", "Author with the most books", TopAuthor()),
		aggregateReport(SectionAggregation, "authors", "All authors with book counts", Authors()),
		aggregateReport(SectionAggregation, "decades", "Books grouped by publication decade", Decades()),

		indexReport("index-title", "Creating index on 'title'", domain.IndexKeys{
			{Field: domain.FieldTitle, Direction: 1},
		}),
		indexReport("index-author-year", "Creating compound index on 'author' and 'published_year'", domain.IndexKeys{
			{Field: domain.FieldAuthor, Direction: 1},
			{Field: domain.FieldPublishedYear, Direction: -1},
		}),
		{
			Section: SectionIndexing,
			Name:    "indexes",
			Title:   "All indexes on the books collection",
			Run:     listIndexes,
		},
		explainReport("explain-title", "Query with index (finding by title)",
			domain.Where(domain.Eq(domain.FieldTitle, "Clean Code"))),
		explainReport("explain-author-year", "Query with compound index (finding by author and year)",
			domain.Where(
				domain.Eq(domain.FieldAuthor, "Robert C. Martin"),
				domain.Gte(domain.FieldPublishedYear, 2000),
			)),
		explainReport("explain-genre-stock", "General query performance",
			domain.Where(
				domain.Eq(domain.FieldGenre, "Fiction"),
				domain.Eq(domain.FieldInStock, true),
			)),

		aggregateReport(SectionAdditional, "count-by-genre", "Book count by genre", CountByGenre()),
		findReport(SectionAdditional, "top-5-expensive", "Top 5 most expensive books",
			nil,
			domain.WithFindProjection(titleAuthorPrice),
			domain.WithFindSort(byPriceDesc),
			domain.WithFindPage(0, 5),
		),
		findReport(SectionAdditional, "out-of-stock", "Books not in stock",
			domain.Where(domain.Eq(domain.FieldInStock, false)),
			domain.WithFindProjection(domain.WithoutID(domain.Include(domain.FieldTitle, domain.FieldAuthor, domain.FieldPublisher))),
		),
		findReport(SectionAdditional, "over-400-pages", "Books with more than 400 pages",
			domain.Where(domain.Gt(domain.FieldPages, 400)),
			domain.WithFindProjection(domain.WithoutID(domain.Include(domain.FieldTitle, domain.FieldPages))),
			domain.WithFindSort(domain.Sort{{Key: domain.FieldPages, Order: domain.Descending}}),
		),
		aggregateReport(SectionAdditional, "price-stats", "Overall price statistics", PriceStats()),
	}
}

func findReport(section, name, title string, filter domain.Filter, opts ...domain.FindOption) Report {
	return Report{
		Section: section,
		Name:    name,
		Title:   title,
		Run: func(ctx context.Context, f domain.Facade) ([]any, error) {
			cur, err := f.Find(ctx, filter, opts...)
			if err != nil {
				return nil, err
			}
			return collect(ctx, cur)
		},
	}
}

func pageReport(page int64) Report {
	r := findReport(SectionAdvanced, "", "", nil,
		domain.WithFindProjection(titleAuthorPrice),
		domain.WithFindPage((page-1)*pageSize, pageSize),
	)
	r.Name = "page-" + strconv.FormatInt(page, 10)
	r.Title = fmt.Sprintf("Pagination, page %d (%d books per page)", page, pageSize)
	return r
}

func aggregateReport(section, name, title string, p domain.Pipeline) Report {
	return Report{
		Section: section,
		Name:    name,
		Title:   title,
		Run: func(ctx context.Context, f domain.Facade) ([]any, error) {
			cur, err := f.Aggregate(ctx, p)
			if err != nil {
				return nil, err
			}
			return collect(ctx, cur)
		},
	}
}

func indexReport(name, title string, keys domain.IndexKeys) Report {
	return Report{
		Section: SectionIndexing,
		Name:    name,
		Title:   title,
		Run: func(ctx context.Context, f domain.Facade) ([]any, error) {
			idx, err := f.CreateIndex(ctx, keys)
			if err != nil {
				return nil, err
			}
			return []any{domain.Document{"created": idx}}, nil
		},
	}
}

func explainReport(name, title string, filter domain.Filter) Report {
	return Report{
		Section: SectionIndexing,
		Name:    name,
		Title:   title,
		Run: func(ctx context.Context, f domain.Facade) ([]any, error) {
			stats, err := f.Explain(ctx, filter)
			if err != nil {
				return nil, err
			}
			return []any{StatsDocument(stats)}, nil
		},
	}
}

func updatePrice(ctx context.Context, f domain.Facade) ([]any, error) {
	filter := domain.Where(domain.Eq(domain.FieldTitle, "1984"))
	res, err := f.UpdateOne(ctx, filter, domain.Changes{domain.FieldPrice: 19.99})
	if err != nil {
		return nil, err
	}

	out := []any{domain.Document{
		"matchedCount":  res.MatchedCount,
		"modifiedCount": res.ModifiedCount,
	}}
	var book domain.BookRecord
	found, err := f.FindOne(ctx, filter, &book)
	if err != nil {
		return nil, err
	}
	if found {
		out = append(out, book)
	}
	return out, nil
}

func deleteExample(ctx context.Context, f domain.Facade) ([]any, error) {
	res, err := f.DeleteOne(ctx, domain.Where(domain.Eq(domain.FieldTitle, "The Great Gatsby")))
	if err != nil {
		return nil, err
	}
	return []any{domain.Document{"deletedCount": res.DeletedCount}}, nil
}

func listIndexes(ctx context.Context, f domain.Facade) ([]any, error) {
	idx, err := f.ListIndexes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(idx))
	for n, d := range idx {
		key := make(domain.Document, len(d.Keys))
		for _, k := range d.Keys {
			key[k.Field] = k.Direction
		}
		doc := domain.Document{"name": d.Name, "key": key}
		if d.Unique {
			doc["unique"] = true
		}
		out[n] = doc
	}
	return out, nil
}

// StatsDocument returns the summary of stats printed by explain reports.
func StatsDocument(stats domain.ExecutionStats) domain.Document {
	doc := domain.Document{
		"stage":               stats.Stage,
		"nReturned":           stats.Returned,
		"totalKeysExamined":   stats.KeysExamined,
		"totalDocsExamined":   stats.DocsExamined,
		"executionTimeMillis": stats.ExecutionTime.Milliseconds(),
	}
	if stats.IndexName != "" {
		doc["indexName"] = stats.IndexName
	}
	return doc
}

func collect(ctx context.Context, cur domain.Cursor) ([]any, error) {
	docs, err := cursor.Collect[domain.Document](ctx, cur)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(docs))
	for n, d := range docs {
		out[n] = d
	}
	return out, nil
}
