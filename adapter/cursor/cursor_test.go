package cursor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

type M = domain.Document

type decoderMock struct{ mock.Mock }

// Decode implements [domain.Decoder].
func (d *decoderMock) Decode(src any, tgt any) error {
	return d.Called(src, tgt).Error(0)
}

type CursorTestSuite struct {
	suite.Suite
	data []domain.Document
}

func (s *CursorTestSuite) SetupSuite() {
	s.data = make([]domain.Document, 100)
	for n := range 100 {
		s.data[n] = M{"title": "book", "pages": n}
	}
}

func (s *CursorTestSuite) TestNilData() {
	cur, err := NewCursor(context.Background(), nil)
	s.NoError(err)
	count := 0
	for cur.Next() {
		count++
	}
	s.Zero(count)
	s.NoError(cur.Err())
}

func (s *CursorTestSuite) TestStructs() {
	ctx := context.Background()
	cur, err := NewCursor(ctx, s.data)
	s.NoError(err)

	n := 0
	for cur.Next() {
		var b domain.BookRecord
		s.NoError(cur.Scan(ctx, &b))
		s.Equal(domain.BookRecord{Title: "book", Pages: n}, b)
		n++
	}
	s.Equal(100, n)
	s.NoError(cur.Err())
	s.NoError(cur.Close())
}

func (s *CursorTestSuite) TestScanBeforeNext() {
	cur, err := NewCursor(context.Background(), s.data)
	s.NoError(err)
	var m M
	s.ErrorIs(cur.Scan(context.Background(), &m), domain.ErrScanBeforeNext)
}

func (s *CursorTestSuite) TestClose() {
	ctx := context.Background()
	cur, err := NewCursor(ctx, s.data)
	s.NoError(err)
	s.True(cur.Next())
	s.NoError(cur.Close())

	s.False(cur.Next())
	s.ErrorIs(cur.Err(), domain.ErrCursorClosed)
	var m M
	s.ErrorIs(cur.Scan(ctx, &m), domain.ErrCursorClosed)
	s.ErrorIs(cur.Close(), domain.ErrCursorClosed)
}

func (s *CursorTestSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cur, err := NewCursor(ctx, s.data)
	s.ErrorIs(err, context.Canceled)
	s.Nil(cur)

	ctx, cancel = context.WithCancel(context.Background())
	cur, err = NewCursor(ctx, s.data)
	s.NoError(err)
	s.True(cur.Next())
	cancel()
	s.False(cur.Next())
	s.ErrorIs(cur.Err(), context.Canceled)
}

func (s *CursorTestSuite) TestScanCanceledContext() {
	cur, err := NewCursor(context.Background(), s.data)
	s.NoError(err)
	s.True(cur.Next())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var m M
	s.ErrorIs(cur.Scan(ctx, &m), context.Canceled)
}

func (s *CursorTestSuite) TestDecoderError() {
	errDec := errors.New("decoder error")
	dec := new(decoderMock)
	dec.On("Decode", mock.Anything, mock.Anything).Return(errDec).Once()

	cur, err := NewCursor(context.Background(), s.data, domain.WithCursorDecoder(dec))
	s.NoError(err)
	s.True(cur.Next())
	var m M
	s.ErrorIs(cur.Scan(context.Background(), &m), errDec)
	dec.AssertExpectations(s.T())
}

func (s *CursorTestSuite) TestCollect() {
	ctx := context.Background()
	cur, err := NewCursor(ctx, s.data[:3])
	s.NoError(err)

	res, err := Collect[M](ctx, cur)
	s.NoError(err)
	s.Equal(s.data[:3], res)
	s.ErrorIs(cur.Err(), domain.ErrCursorClosed)
}

func TestCursorTestSuite(t *testing.T) {
	suite.Run(t, new(CursorTestSuite))
}
