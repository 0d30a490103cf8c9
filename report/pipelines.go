package report

import "github.com/vinicius-lino-figueiredo/bookquery/domain"

// AveragePriceByGenre groups books by genre, with their average price
// rounded to two places and their count, most expensive genre first.
func AveragePriceByGenre() domain.Pipeline {
	return domain.Pipeline{
		domain.GroupStage{
			Key: domain.Ref(domain.FieldGenre),
			Accumulators: []domain.Accumulator{
				{Name: "averagePrice", Op: domain.AccAvg, Expr: domain.Ref(domain.FieldPrice)},
				domain.Count("count"),
			},
		},
		domain.SortStage{Sort: domain.Sort{{Key: "averagePrice", Order: domain.Descending}}},
		domain.ProjectStage{
			Fields: []domain.Field{
				{Name: "genre", Expr: domain.Ref(domain.FieldID)},
				{Name: "averagePrice", Expr: domain.Round{Value: domain.Ref("averagePrice"), Places: 2}},
				domain.Keep("count"),
			},
			ExcludeID: true,
		},
	}
}

// TopAuthor returns the author with the most books and their titles.
func TopAuthor() domain.Pipeline {
	return domain.Pipeline{
		groupByAuthor("books"),
		domain.SortStage{Sort: domain.Sort{{Key: "bookCount", Order: domain.Descending}}},
		domain.LimitStage{N: 1},
		projectAuthor("books"),
	}
}

// Authors lists every author with their book count and titles, most
// prolific first.
func Authors() domain.Pipeline {
	return domain.Pipeline{
		groupByAuthor("titles"),
		domain.SortStage{Sort: domain.Sort{{Key: "bookCount", Order: domain.Descending}}},
		projectAuthor("titles"),
	}
}

func groupByAuthor(list string) domain.GroupStage {
	return domain.GroupStage{
		Key: domain.Ref(domain.FieldAuthor),
		Accumulators: []domain.Accumulator{
			domain.Count("bookCount"),
			{Name: list, Op: domain.AccPush, Expr: domain.Ref(domain.FieldTitle)},
		},
	}
}

func projectAuthor(list string) domain.ProjectStage {
	return domain.ProjectStage{
		Fields: []domain.Field{
			{Name: "author", Expr: domain.Ref(domain.FieldID)},
			domain.Keep("bookCount"),
			domain.Keep(list),
		},
		ExcludeID: true,
	}
}

// Decades buckets books by publication decade, oldest first. A book from
// 1987 lands in 1980.
func Decades() domain.Pipeline {
	return domain.Pipeline{
		domain.AddFieldsStage{Fields: []domain.Field{{
			Name: "decade",
			Expr: domain.Multiply{
				Left: domain.Floor{Value: domain.Divide{
					Left:  domain.Ref(domain.FieldPublishedYear),
					Right: domain.Lit(10),
				}},
				Right: domain.Lit(10),
			},
		}}},
		domain.GroupStage{
			Key: domain.Ref("decade"),
			Accumulators: []domain.Accumulator{
				domain.Count("count"),
				{Name: "books", Op: domain.AccPush, Expr: domain.Object{Fields: []domain.Field{
					domain.Keep(domain.FieldTitle),
					{Name: "year", Expr: domain.Ref(domain.FieldPublishedYear)},
				}}},
			},
		},
		domain.SortStage{Sort: domain.Sort{{Key: domain.FieldID, Order: domain.Ascending}}},
		domain.ProjectStage{
			Fields: []domain.Field{
				{Name: "decade", Expr: domain.Ref(domain.FieldID)},
				domain.Keep("count"),
				domain.Keep("books"),
			},
			ExcludeID: true,
		},
	}
}

// CountByGenre counts books per genre, largest genre first.
func CountByGenre() domain.Pipeline {
	return domain.Pipeline{
		domain.GroupStage{
			Key:          domain.Ref(domain.FieldGenre),
			Accumulators: []domain.Accumulator{domain.Count("count")},
		},
		domain.SortStage{Sort: domain.Sort{{Key: "count", Order: domain.Descending}}},
	}
}

// PriceStats returns a single document with the average, lowest and
// highest price and the number of books.
func PriceStats() domain.Pipeline {
	return domain.Pipeline{
		domain.GroupStage{
			Accumulators: []domain.Accumulator{
				{Name: "avgPrice", Op: domain.AccAvg, Expr: domain.Ref(domain.FieldPrice)},
				{Name: "minPrice", Op: domain.AccMin, Expr: domain.Ref(domain.FieldPrice)},
				{Name: "maxPrice", Op: domain.AccMax, Expr: domain.Ref(domain.FieldPrice)},
				domain.Count("totalBooks"),
			},
		},
		domain.ProjectStage{
			Fields: []domain.Field{
				{Name: "avgPrice", Expr: domain.Round{Value: domain.Ref("avgPrice"), Places: 2}},
				domain.Keep("minPrice"),
				domain.Keep("maxPrice"),
				domain.Keep("totalBooks"),
			},
			ExcludeID: true,
		},
	}
}
