package deserializer

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

var ctx = context.Background()

type DeserializerTestSuite struct {
	suite.Suite
	d *Deserializer
}

func (s *DeserializerTestSuite) SetupTest() {
	s.d = NewDeserializer(nil).(*Deserializer)
}

// Can deserialize scalars into a document.
func (s *DeserializerTestSuite) TestDocument() {
	var r domain.Document
	s.NoError(s.d.Deserialize(ctx, []byte(`{"s":"str","t":true,"n":5,"f":6.2,"nil":null}`), &r))
	s.Equal(domain.Document{"s": "str", "t": true, "n": 5.0, "f": 6.2, "nil": nil}, r)
}

// Can deserialize a book through its bson tags.
func (s *DeserializerTestSuite) TestBook() {
	var b domain.BookRecord
	s.NoError(s.d.Deserialize(ctx, []byte(`{
		"title": "The Hobbit",
		"author": "J.R.R. Tolkien",
		"genre": "Fantasy",
		"published_year": 1937,
		"price": 14.99,
		"pages": 310,
		"in_stock": true,
		"publisher": "George Allen & Unwin"
	}`), &b))
	s.Equal(domain.BookRecord{
		Title:         "The Hobbit",
		Author:        "J.R.R. Tolkien",
		Genre:         "Fantasy",
		PublishedYear: 1937,
		Price:         14.99,
		Pages:         310,
		InStock:       true,
		Publisher:     "George Allen & Unwin",
	}, b)
}

// Can deserialize sub objects and arrays.
func (s *DeserializerTestSuite) TestNested() {
	var r domain.Document
	s.NoError(s.d.Deserialize(ctx, []byte(`{"test":{"list":[39,{"again":"yes"}]}}`), &r))
	list := r["test"].(map[string]any)["list"].([]any)
	s.Equal(39.0, list[0])
	s.Equal("yes", list[1].(map[string]any)["again"])
}

// Can deserialize strings despite of line breaks.
func (s *DeserializerTestSuite) TestStringWithLineBreak() {
	var r domain.Document
	s.NoError(s.d.Deserialize(ctx, []byte(`{"test":"world\r\nearth\nother\rline"}`), &r))
	s.Equal("world\r\nearth\nother\rline", r["test"])
}

// Deserialization with a canceled context should fail.
func (s *DeserializerTestSuite) TestContext() {
	b := []byte(`{"hello":"world"}`)
	ctx, cancel := context.WithCancel(context.Background())

	var v1 any
	s.NoError(s.d.Deserialize(ctx, b, &v1))
	s.Equal(map[string]any{"hello": "world"}, v1)

	cancel()

	var v2 any
	s.ErrorIs(s.d.Deserialize(ctx, b, &v2), context.Canceled)
	s.Nil(v2)
}

// Deserialize returns error if target is nil.
func (s *DeserializerTestSuite) TestNilTarget() {
	err := s.d.Deserialize(ctx, []byte(`{"a":1}`), nil)
	s.ErrorIs(err, domain.ErrTargetNil)
}

// A type mismatch is reported as a decode error.
func (s *DeserializerTestSuite) TestMismatch() {
	var b domain.BookRecord
	err := s.d.Deserialize(ctx, []byte(`{"title":["not","a","string"]}`), &b)
	s.ErrorAs(err, &domain.ErrDecode{})
}

func (s *DeserializerTestSuite) TestInvalidSyntax() {
	target := domain.Document{}
	err := s.d.Deserialize(context.Background(), []byte("{"), &target)
	s.ErrorIs(err, io.ErrUnexpectedEOF)
}

func TestDeserializerTestSuite(t *testing.T) {
	suite.Run(t, new(DeserializerTestSuite))
}
