package comparer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

type M = domain.Document

type ComparerTestSuite struct {
	suite.Suite
	c *Comparer
}

func (s *ComparerTestSuite) SetupTest() {
	s.c = NewComparer().(*Comparer)
}

// nil should always be the smallest value.
func (s *ComparerTestSuite) TestNilIsSmallest() {
	otherStuff := [...]any{"string", "", -1, 0, uint(12), false,
		time.UnixMilli(12345), M{}, M{"hello": "world"},
		[]any{}, []any{"quite", 5},
	}
	for _, stuff := range otherStuff {
		comp, err := s.c.Compare(nil, stuff)
		s.NoError(err)
		s.Equal(-1, comp)
		comp, err = s.c.Compare(stuff, nil)
		s.NoError(err)
		s.Equal(1, comp)
	}
	comp, err := s.c.Compare(nil, nil)
	s.NoError(err)
	s.Zero(comp)
}

func (s *ComparerTestSuite) TestNumbers() {
	testCases := []struct {
		arg1 any
		arg2 any
		res  int
	}{
		{arg1: int64(-12), arg2: int16(0), res: -1},
		{arg1: uint8(0), arg2: int8(-3), res: 1},
		{arg1: 5.7, arg2: uint32(2), res: 1},
		{arg1: 5.7, arg2: float32(12.3), res: -1},
		{arg1: uint64(0), arg2: uint16(0), res: 0},
		{arg1: -2.6, arg2: -2.6, res: 0},
		{arg1: int32(5), arg2: 5, res: 0},
		{arg1: 19.99, arg2: 19.99, res: 0},
	}

	for _, tc := range testCases {
		comp, err := s.c.Compare(tc.arg1, tc.arg2)
		s.NoError(err)
		s.Equal(tc.res, comp, "%v vs %v", tc.arg1, tc.arg2)
	}
}

func (s *ComparerTestSuite) TestTypeOrder() {
	ordered := []any{nil, -3, 2.5, "", "abc", M{}, M{"a": 1}, []any{}, []any{1}, false, true, time.UnixMilli(1)}
	for i := range len(ordered) - 1 {
		comp, err := s.c.Compare(ordered[i], ordered[i+1])
		s.NoError(err)
		s.Equal(-1, comp, "%v vs %v", ordered[i], ordered[i+1])
	}
}

func (s *ComparerTestSuite) TestStrings() {
	comp, err := s.c.Compare("1984", "Animal Farm")
	s.NoError(err)
	s.Equal(-1, comp)

	comp, err = s.c.Compare("b", "a")
	s.NoError(err)
	s.Equal(1, comp)
}

func (s *ComparerTestSuite) TestArrays() {
	comp, err := s.c.Compare([]any{1, 2}, []any{1, 2, 3})
	s.NoError(err)
	s.Equal(-1, comp)

	comp, err = s.c.Compare([]any{1, "b"}, []any{1, "a", 0})
	s.NoError(err)
	s.Equal(1, comp)

	comp, err = s.c.Compare([]any{"x", 5}, []any{"x", 5})
	s.NoError(err)
	s.Zero(comp)
}

func (s *ComparerTestSuite) TestDocuments() {
	comp, err := s.c.Compare(M{"title": "a", "year": 1}, M{"title": "a", "year": 1})
	s.NoError(err)
	s.Zero(comp)

	comp, err = s.c.Compare(M{"title": "a", "year": 1}, M{"title": "a", "year": 2})
	s.NoError(err)
	s.Equal(-1, comp)

	comp, err = s.c.Compare(M{"a": 1}, M{"a": 1, "b": 1})
	s.NoError(err)
	s.Equal(-1, comp)
}

func (s *ComparerTestSuite) TestNaN() {
	nan := 0.0
	nan /= nan
	comp, err := s.c.Compare(nan, -1e300)
	s.NoError(err)
	s.Equal(-1, comp)
}

func (s *ComparerTestSuite) TestCannotCompare() {
	type unknown struct{}
	_, err := s.c.Compare(unknown{}, 1)
	s.ErrorAs(err, new(domain.ErrCannotCompare))
}

func (s *ComparerTestSuite) TestComparable() {
	s.True(s.c.Comparable(1, 2.5))
	s.True(s.c.Comparable("a", "b"))
	s.True(s.c.Comparable(time.Now(), time.Now()))
	s.False(s.c.Comparable(1, "1"))
	s.True(s.c.Comparable(true, false))
	s.False(s.c.Comparable(true, 1))
	s.False(s.c.Comparable(nil, nil))
}

func TestComparerTestSuite(t *testing.T) {
	suite.Run(t, new(ComparerTestSuite))
}
