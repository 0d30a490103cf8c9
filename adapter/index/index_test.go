package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

type M = domain.Document

type IndexTestSuite struct {
	suite.Suite
	idx  *Index
	docs []domain.Document
}

func (s *IndexTestSuite) SetupTest() {
	idx, err := NewIndex(domain.WithIndexKeys(domain.IndexKeys{{Field: "published_year", Direction: 1}}))
	s.Require().NoError(err)
	s.idx = idx.(*Index)
	s.docs = []domain.Document{
		M{"_id": "a", "title": "1984", "published_year": 1949},
		M{"_id": "b", "title": "Dune", "published_year": 1965},
		M{"_id": "c", "title": "Neuromancer", "published_year": 1984},
		M{"_id": "d", "title": "Foundation", "published_year": 1951},
		M{"_id": "e", "title": "Hyperion", "published_year": 1989},
		M{"_id": "f", "title": "Solaris", "published_year": 1961},
		M{"_id": "g", "title": "Ubik", "published_year": 1969},
		M{"_id": "h", "title": "Stand on Zanzibar", "published_year": 1968},
		M{"_id": "i", "title": "The Dispossessed", "published_year": 1974},
		M{"_id": "j", "title": "Ringworld", "published_year": 1970},
		M{"_id": "k", "title": "Babel-17", "published_year": 1966},
		M{"_id": "l", "title": "Dhalgren", "published_year": 1974},
	}
	s.Require().NoError(s.idx.Insert(context.Background(), s.docs...))
}

func (s *IndexTestSuite) ids(docs []domain.Document) []any {
	ids := make([]any, len(docs))
	for n, d := range docs {
		ids[n] = d["_id"]
	}
	return ids
}

func (s *IndexTestSuite) TestDescriptor() {
	s.Equal("published_year_1", s.idx.Name())
	s.Equal(domain.IndexKeys{{Field: "published_year", Direction: 1}}, s.idx.Keys())
	s.False(s.idx.Unique())
	s.Equal(11, s.idx.GetNumberOfKeys())

	idx, err := NewIndex(
		domain.WithIndexKeys(domain.IndexKeys{{Field: "_id", Direction: 1}}),
		domain.WithIndexName("_id_"),
		domain.WithIndexUnique(true),
	)
	s.NoError(err)
	s.Equal("_id_", idx.Name())
	s.True(idx.Unique())
}

func (s *IndexTestSuite) TestNoKeys() {
	_, err := NewIndex()
	s.ErrorIs(err, domain.ErrInvalidSpec)
}

func (s *IndexTestSuite) TestGetMatching() {
	res, err := s.idx.GetMatching(1974)
	s.NoError(err)
	s.ElementsMatch([]any{"i", "l"}, s.ids(res))

	res, err = s.idx.GetMatching(1984, 1949, 1984, 2001)
	s.NoError(err)
	s.Equal([]any{"a", "c"}, s.ids(res))

	res, err = s.idx.GetMatching()
	s.NoError(err)
	s.Empty(res)
}

func (s *IndexTestSuite) TestGetBetweenBounds() {
	ctx := context.Background()
	res, err := s.idx.GetBetweenBounds(ctx, domain.Gte("published_year", 1965), domain.Lt("published_year", 1969))
	s.NoError(err)
	s.Equal([]any{"b", "k", "h"}, s.ids(res))

	res, err = s.idx.GetBetweenBounds(ctx, domain.Gt("published_year", 1974))
	s.NoError(err)
	s.Equal([]any{"c", "e"}, s.ids(res))

	res, err = s.idx.GetBetweenBounds(ctx, domain.Lte("published_year", 1951))
	s.NoError(err)
	s.Equal([]any{"a", "d"}, s.ids(res))
}

func (s *IndexTestSuite) TestTightestBound() {
	ctx := context.Background()
	res, err := s.idx.GetBetweenBounds(ctx,
		domain.Gte("published_year", 1960),
		domain.Gt("published_year", 1966),
		domain.Gte("published_year", 1966),
		domain.Lte("published_year", 1990),
		domain.Lt("published_year", 1970),
	)
	s.NoError(err)
	s.Equal([]any{"h", "g"}, s.ids(res))
}

func (s *IndexTestSuite) TestBoundInvalidOperator() {
	_, err := s.idx.GetBetweenBounds(context.Background(), domain.Eq("published_year", 1965))
	s.ErrorIs(err, domain.ErrInvalidSpec)
}

func (s *IndexTestSuite) TestUnique() {
	ctx := context.Background()
	idx, err := NewIndex(
		domain.WithIndexKeys(domain.IndexKeys{{Field: "_id", Direction: 1}}),
		domain.WithIndexUnique(true),
	)
	s.Require().NoError(err)
	s.NoError(idx.Insert(ctx, M{"_id": 1}, M{"_id": 2}))

	// a failing batch leaves nothing behind.
	err = idx.Insert(ctx, M{"_id": 3}, M{"_id": 1})
	s.ErrorIs(err, domain.ErrConstraintViolated)
	res, err := idx.GetMatching(3)
	s.NoError(err)
	s.Empty(res)
}

func (s *IndexTestSuite) TestRemove() {
	ctx := context.Background()
	s.NoError(s.idx.Remove(ctx, s.docs[8]))
	res, err := s.idx.GetMatching(1974)
	s.NoError(err)
	s.Equal([]any{"l"}, s.ids(res))
	s.Equal(11, s.idx.GetNumberOfKeys())
}

func (s *IndexTestSuite) TestUpdate() {
	ctx := context.Background()
	updated := M{"_id": "b", "title": "Dune", "published_year": 2021}
	s.NoError(s.idx.Update(ctx, s.docs[1], updated))

	res, err := s.idx.GetMatching(1965)
	s.NoError(err)
	s.Empty(res)
	res, err = s.idx.GetMatching(2021)
	s.NoError(err)
	s.Equal([]domain.Document{updated}, res)
}

func (s *IndexTestSuite) TestMissingFieldKeyedAsNil() {
	ctx := context.Background()
	s.NoError(s.idx.Insert(ctx, M{"_id": "z", "title": "Untitled"}))
	res, err := s.idx.GetMatching(nil)
	s.NoError(err)
	s.Equal([]any{"z"}, s.ids(res))
}

func (s *IndexTestSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.ErrorIs(s.idx.Insert(ctx, M{"_id": "y"}), context.Canceled)
	s.ErrorIs(s.idx.Remove(ctx, s.docs[0]), context.Canceled)
	s.ErrorIs(s.idx.Update(ctx, s.docs[0], s.docs[0]), context.Canceled)
	_, err := s.idx.GetBetweenBounds(ctx)
	s.ErrorIs(err, context.Canceled)
}

func TestIndexTestSuite(t *testing.T) {
	suite.Run(t, new(IndexTestSuite))
}
