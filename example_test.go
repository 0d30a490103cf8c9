package bookquery_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/vinicius-lino-figueiredo/bookquery"
	"github.com/vinicius-lino-figueiredo/bookquery/report"
)

type M = bookquery.Document

func sampleFacade(ctx context.Context) bookquery.Facade {
	f, _ := bookquery.NewMemoryFacade()
	_, _ = f.InsertMany(ctx,
		bookquery.BookRecord{Title: "1984", Author: "George Orwell", Genre: "Dystopian", PublishedYear: 1949, Price: 10.99},
		bookquery.BookRecord{Title: "Clean Code", Author: "Robert C. Martin", Genre: "Programming", PublishedYear: 2008, Price: 37.99},
		bookquery.BookRecord{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", PublishedYear: 1937, Price: 14.99},
		bookquery.BookRecord{Title: "The Clean Coder", Author: "Robert C. Martin", Genre: "Programming", PublishedYear: 2011, Price: 29.99},
	)
	return f
}

func ExampleNewMemoryFacade() {
	ctx := context.Background()

	// A memory facade behaves like one connected to a mongo collection,
	// but keeps the books in process. Books can be inserted as
	// [bookquery.BookRecord] values or as documents with the same fields.
	// Books without _id get a generated one.
	f, _ := bookquery.NewMemoryFacade()
	res, _ := f.InsertMany(ctx,
		bookquery.BookRecord{Title: "1984", PublishedYear: 1949, Price: 10.99},
		M{"title": "Dune", "published_year": 1965, "price": 9.99},
	)

	n, _ := f.Count(ctx, nil)
	fmt.Println(len(res.InsertedIDs), n)
	// Output: 2 2
}

func ExampleFacade_Find() {
	ctx := context.Background()
	f := sampleFacade(ctx)

	// Filters are built from predicates, and every predicate must hold.
	// Options are applied in a fixed order: the matching books are
	// sorted, then paged, then projected.
	cur, _ := f.Find(ctx,
		bookquery.Where(bookquery.Gt("published_year", 1940)),
		bookquery.WithProjection(bookquery.WithoutID(bookquery.Include("title", "price"))),
		bookquery.WithSort(bookquery.Sort{{Key: "price", Order: -1}}),
		bookquery.WithPage(1, 2),
	)

	docs, _ := bookquery.Collect[M](ctx, cur)
	fmt.Println(docs)
	// Output: [map[price:29.99 title:The Clean Coder] map[price:10.99 title:1984]]
}

func ExampleFacade_Find_invalid() {
	ctx := context.Background()
	f := sampleFacade(ctx)

	// Descriptors are checked before anything is sent to the collection.
	_, err := f.Find(ctx, nil, bookquery.WithPage(0, 0))

	fmt.Println(errors.Is(err, bookquery.ErrInvalidSpec))
	fmt.Println(errors.Is(err, bookquery.ErrStoreUnavailable))
	// Output:
	// true
	// false
}

func ExampleFacade_UpdateOne() {
	ctx := context.Background()
	f := sampleFacade(ctx)

	filter := bookquery.Where(bookquery.Eq("title", "1984"))
	res, _ := f.UpdateOne(ctx, filter, bookquery.Changes{"price": 19.99})

	var book bookquery.BookRecord
	found, _ := f.FindOne(ctx, filter, &book)

	fmt.Println(res.MatchedCount, res.ModifiedCount)
	fmt.Println(found, book.Price)
	// Output:
	// 1 1
	// true 19.99
}

func ExampleFacade_Aggregate() {
	ctx := context.Background()
	f := sampleFacade(ctx)

	// The report package holds the pipelines of the bookstore reports.
	cur, _ := f.Aggregate(ctx, report.TopAuthor())

	docs, _ := bookquery.Collect[M](ctx, cur)
	fmt.Println(docs)
	// Output: [map[author:Robert C. Martin bookCount:2 books:[Clean Code The Clean Coder]]]
}

func ExampleFacade_Explain() {
	ctx := context.Background()
	f := sampleFacade(ctx)

	filter := bookquery.Where(bookquery.Eq("title", "Clean Code"))

	before, _ := f.Explain(ctx, filter)
	name, _ := f.CreateIndex(ctx, bookquery.IndexKeys{{Field: "title", Direction: 1}})
	after, _ := f.Explain(ctx, filter)

	fmt.Println(before.Stage, before.DocsExamined)
	fmt.Println(name)
	fmt.Println(after.Stage, after.IndexName, after.DocsExamined)
	// Output:
	// COLLSCAN 4
	// title_1
	// IXSCAN title_1 1
}
