package matcher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

type M = domain.Document

type comparerMock struct{ mock.Mock }

// Comparable implements [domain.Comparer].
func (c *comparerMock) Comparable(a any, b any) bool {
	return c.Called(a, b).Bool(0)
}

// Compare implements [domain.Comparer].
func (c *comparerMock) Compare(a any, b any) (int, error) {
	call := c.Called(a, b)
	return call.Int(0), call.Error(1)
}

type MatcherTestSuite struct {
	suite.Suite
	mtchr *Matcher
}

var book = M{
	"title":          "1984",
	"author":         "George Orwell",
	"genre":          "Dystopian",
	"published_year": 1949,
	"price":          10.99,
	"in_stock":       true,
}

// Can find documents with simple fields.
func (s *MatcherTestSuite) TestSimpleFieldEquality() {
	s.Matches(s.mtchr.Match(book, domain.Where(domain.Eq("title", "1984"))))
	s.NotMatches(s.mtchr.Match(book, domain.Where(domain.Eq("title", "1985"))))
	s.Matches(s.mtchr.Match(book, domain.Where(domain.Eq("in_stock", true))))
	s.Matches(s.mtchr.Match(book, domain.Where(domain.Eq("published_year", int64(1949)))))
	s.Matches(s.mtchr.Match(book, domain.Where(domain.Eq("published_year", 1949.0))))
}

func (s *MatcherTestSuite) TestEmptyFilterMatchesEverything() {
	s.Matches(s.mtchr.Match(book, nil))
	s.Matches(s.mtchr.Match(M{}, domain.Filter{}))
}

func (s *MatcherTestSuite) TestMissingFieldIsNil() {
	s.Matches(s.mtchr.Match(book, domain.Where(domain.Eq("publisher", nil))))
	s.NotMatches(s.mtchr.Match(book, domain.Where(domain.Gt("pages", 0))))
	s.Matches(s.mtchr.Match(book, domain.Where(domain.Ne("pages", 100))))
}

func (s *MatcherTestSuite) TestComparisons() {
	s.Matches(s.mtchr.Match(book, domain.Where(domain.Gt("published_year", 1900))))
	s.NotMatches(s.mtchr.Match(book, domain.Where(domain.Gt("published_year", 2000))))
	s.Matches(s.mtchr.Match(book, domain.Where(domain.Gte("published_year", 1949))))
	s.NotMatches(s.mtchr.Match(book, domain.Where(domain.Lt("price", 10.99))))
	s.Matches(s.mtchr.Match(book, domain.Where(domain.Lte("price", 10.99))))
}

// Ordering operators never cross type brackets.
func (s *MatcherTestSuite) TestComparisonTypeBracket() {
	s.NotMatches(s.mtchr.Match(book, domain.Where(domain.Gt("price", "1"))))
	s.NotMatches(s.mtchr.Match(book, domain.Where(domain.Lt("title", 5))))
}

// false < true, as stores order booleans.
func (s *MatcherTestSuite) TestBooleanComparisons() {
	s.Matches(s.mtchr.Match(book, domain.Where(domain.Gt("in_stock", false))))
	s.Matches(s.mtchr.Match(book, domain.Where(domain.Gte("in_stock", true))))
	s.NotMatches(s.mtchr.Match(book, domain.Where(domain.Lt("in_stock", true))))
	s.NotMatches(s.mtchr.Match(M{"in_stock": false}, domain.Where(domain.Gt("in_stock", false))))
	s.Matches(s.mtchr.Match(M{"in_stock": false}, domain.Where(domain.Lte("in_stock", false))))
	s.NotMatches(s.mtchr.Match(book, domain.Where(domain.Gt("in_stock", 0))))
}

func (s *MatcherTestSuite) TestConjunction() {
	s.Matches(s.mtchr.Match(book, domain.Where(
		domain.Eq("in_stock", true),
		domain.Gte("published_year", 1940),
		domain.Lt("published_year", 1950),
	)))
	s.NotMatches(s.mtchr.Match(book, domain.Where(
		domain.Eq("in_stock", true),
		domain.Gt("published_year", 2010),
	)))
}

func (s *MatcherTestSuite) TestIn() {
	s.Matches(s.mtchr.Match(book, domain.Where(domain.In("genre", "Fiction", "Dystopian"))))
	s.NotMatches(s.mtchr.Match(book, domain.Where(domain.In("genre", "Fiction"))))
	s.NotMatches(s.mtchr.Match(book, domain.Where(domain.In("genre"))))

	_, err := s.mtchr.Match(book, domain.Filter{{Field: "genre", Op: domain.OpIn, Value: "Fiction"}})
	s.ErrorIs(err, domain.ErrInvalidSpec)
}

func (s *MatcherTestSuite) TestUnknownOperator() {
	_, err := s.mtchr.Match(book, domain.Filter{{Field: "genre", Op: "regex", Value: "F.*"}})
	s.ErrorIs(err, domain.ErrInvalidSpec)
}

func (s *MatcherTestSuite) TestComparerError() {
	errCmp := errors.New("compare error")
	c := new(comparerMock)
	c.On("Compare", "1984", "x").Return(0, errCmp).Once()
	s.mtchr = NewMatcher(WithComparer(c)).(*Matcher)

	_, err := s.mtchr.Match(book, domain.Where(domain.Eq("title", "x")))
	s.ErrorIs(err, errCmp)
	c.AssertExpectations(s.T())
}

func (s *MatcherTestSuite) Matches(matches bool, err error) {
	s.NoError(err)
	s.True(matches)
}

func (s *MatcherTestSuite) NotMatches(matches bool, err error) {
	s.NoError(err)
	s.False(matches)
}

func (s *MatcherTestSuite) SetupTest() {
	s.mtchr = NewMatcher().(*Matcher)
}

func TestMatcherTestSuite(t *testing.T) {
	suite.Run(t, new(MatcherTestSuite))
}
