package bookquery_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/vinicius-lino-figueiredo/bookquery"
	"github.com/vinicius-lino-figueiredo/bookquery/report"
)

var genres = [...]string{"Fiction", "Fantasy", "Programming", "Dystopian", "Romance"}

func books(size int) []any {
	res := make([]any, size)
	for n := range size {
		res[n] = bookquery.BookRecord{
			Title:         fmt.Sprintf("Book %d", n),
			Author:        fmt.Sprintf("Author %d", n%50),
			Genre:         genres[n%len(genres)],
			PublishedYear: 1900 + n%120,
			Price:         float64(n%4000) / 100,
			Pages:         100 + n%900,
			InStock:       n%3 != 0,
		}
	}
	return res
}

func seeded(b *testing.B, size int) bookquery.Facade {
	f, err := bookquery.NewMemoryFacade()
	if err != nil {
		b.Fatal(err)
	}
	if _, err := f.InsertMany(context.Background(), books(size)...); err != nil {
		b.Fatal(err)
	}
	return f
}

func BenchmarkInsertBatch(b *testing.B) {
	ctx := context.Background()

	for _, size := range [...]int{1, 10, 100, 1_000} {
		b.Run(fmt.Sprintf("batch=%d", size), func(b *testing.B) {
			docs := books(size)
			f, _ := bookquery.NewMemoryFacade()
			for b.Loop() {
				if _, err := f.InsertMany(ctx, docs...); err != nil {
					b.FailNow()
				}
			}

			perItem := float64(b.Elapsed().Nanoseconds()) / float64(b.N*size)
			b.ReportMetric(perItem, "ns/item")
		})
	}
}

func BenchmarkFind(b *testing.B) {
	ctx := context.Background()
	filter := bookquery.Where(bookquery.Eq("author", "Author 7"))

	for _, size := range [...]int{100, 1_000, 10_000} {
		b.Run(fmt.Sprintf("db=%d/index=false", size), func(b *testing.B) {
			f := seeded(b, size)
			for b.Loop() {
				cur, err := f.Find(ctx, filter)
				if err != nil {
					b.FailNow()
				}
				_, _ = bookquery.Collect[bookquery.BookRecord](ctx, cur)
			}
		})

		b.Run(fmt.Sprintf("db=%d/index=true", size), func(b *testing.B) {
			f := seeded(b, size)
			if _, err := f.CreateIndex(ctx, bookquery.IndexKeys{{Field: "author", Direction: 1}}); err != nil {
				b.Fatal(err)
			}
			for b.Loop() {
				cur, err := f.Find(ctx, filter)
				if err != nil {
					b.FailNow()
				}
				_, _ = bookquery.Collect[bookquery.BookRecord](ctx, cur)
			}
		})
	}
}

func BenchmarkFindWithSort(b *testing.B) {
	ctx := context.Background()
	f := seeded(b, 10_000)

	for b.Loop() {
		cur, err := f.Find(ctx, nil,
			bookquery.WithSort(bookquery.Sort{{Key: "price", Order: -1}}),
			bookquery.WithProjection(bookquery.WithoutID(bookquery.Include("title", "price"))),
			bookquery.WithPage(100, 10),
		)
		if err != nil {
			b.FailNow()
		}
		_, _ = bookquery.Collect[bookquery.Document](ctx, cur)
	}
}

func BenchmarkCount(b *testing.B) {
	ctx := context.Background()
	f := seeded(b, 10_000)
	filter := bookquery.Where(bookquery.Gte("published_year", 2000), bookquery.Eq("in_stock", true))

	for b.Loop() {
		if _, err := f.Count(ctx, filter); err != nil {
			b.FailNow()
		}
	}
}

func BenchmarkUpdateOne(b *testing.B) {
	ctx := context.Background()
	f := seeded(b, 10_000)
	filter := bookquery.Where(bookquery.Eq("title", "Book 5000"))

	var n int
	for b.Loop() {
		n++
		if _, err := f.UpdateOne(ctx, filter, bookquery.Changes{"pages": n}); err != nil {
			b.FailNow()
		}
	}
}

func BenchmarkAggregate(b *testing.B) {
	ctx := context.Background()

	pipelines := map[string]bookquery.Pipeline{
		"avg-price-by-genre": report.AveragePriceByGenre(),
		"authors":            report.Authors(),
		"decades":            report.Decades(),
	}
	for name, p := range pipelines {
		b.Run(name, func(b *testing.B) {
			f := seeded(b, 10_000)
			for b.Loop() {
				cur, err := f.Aggregate(ctx, p)
				if err != nil {
					b.FailNow()
				}
				_, _ = bookquery.Collect[bookquery.Document](ctx, cur)
			}
		})
	}
}
