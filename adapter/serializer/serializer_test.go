package serializer

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
	"go.mongodb.org/mongo-driver/bson"
)

var ctx = context.Background()

type SerializerTestSuite struct {
	suite.Suite
	s *Serializer
}

func (s *SerializerTestSuite) SetupTest() {
	s.s = NewSerializer().(*Serializer)
}

func (s *SerializerTestSuite) decode(b []byte) map[string]any {
	var r map[string]any
	s.Require().NoError(json.Unmarshal(b, &r))
	return r
}

// Can serialize scalars.
func (s *SerializerTestSuite) TestScalars() {
	b, err := s.s.Serialize(ctx, domain.Document{"s": "Some string", "t": true, "n": 5, "f": 6.2, "nil": nil})
	s.NoError(err)
	s.Equal(map[string]any{"s": "Some string", "t": true, "n": 5.0, "f": 6.2, "nil": nil}, s.decode(b))
}

// Can serialize times.
func (s *SerializerTestSuite) TestTime() {
	d := time.Date(2024, 5, 1, 12, 30, 0, 0, time.FixedZone("x", 3600))
	b, err := s.s.Serialize(ctx, domain.Document{"test": d})
	s.NoError(err)
	s.Equal("2024-05-01T11:30:00Z", s.decode(b)["test"])
}

// Non-finite numbers do not break the output.
func (s *SerializerTestSuite) TestNonFinite() {
	b, err := s.s.Serialize(ctx, domain.Document{"nan": math.NaN(), "inf": math.Inf(-1)})
	s.NoError(err)
	s.Equal(map[string]any{"nan": "NaN", "inf": "-Inf"}, s.decode(b))
}

// Can serialize nested documents and arrays of either backend.
func (s *SerializerTestSuite) TestNested() {
	a := bson.M{
		"books": bson.A{bson.D{{Key: "title", Value: "Dune"}, {Key: "year", Value: 1965}}},
		"sub":   domain.Document{"list": []any{1, domain.Document{"again": "yes"}}},
	}
	b, err := s.s.Serialize(ctx, a)
	s.NoError(err)
	r := s.decode(b)
	s.Equal([]any{map[string]any{"title": "Dune", "year": 1965.0}}, r["books"])
	s.Equal(map[string]any{"list": []any{1.0, map[string]any{"again": "yes"}}}, r["sub"])
}

// Can serialize structs through their json tags.
func (s *SerializerTestSuite) TestStruct() {
	b, err := s.s.Serialize(ctx, domain.BookRecord{Title: "1984", PublishedYear: 1949})
	s.NoError(err)
	r := s.decode(b)
	s.Equal("1984", r["title"])
	s.Equal(1949.0, r["published_year"])
	s.NotContains(r, "_id")
}

// Can serialize strings despite of line breaks.
func (s *SerializerTestSuite) TestStringWithLineBreak() {
	badString := "world\r\nearth\nother\rline"
	b, err := s.s.Serialize(ctx, domain.Document{"test": badString})
	s.NoError(err)
	s.NotContains(b, byte('\n'))
	s.Equal(badString, s.decode(b)["test"])
}

// Indented output spreads fields over lines.
func (s *SerializerTestSuite) TestIndent() {
	ser := NewSerializer(WithIndent("  "))
	b, err := ser.Serialize(ctx, []domain.Document{{"a": 1}})
	s.NoError(err)
	s.Equal("[\n  {\n    \"a\": 1\n  }\n]", string(b))
	s.True(strings.HasPrefix(string(b), "["))
}

// Serialization with a canceled context should fail.
func (s *SerializerTestSuite) TestContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := s.s.Serialize(ctx, nil)
	s.ErrorIs(err, context.Canceled)
	s.Nil(b)
}

func TestSerializerTestSuite(t *testing.T) {
	suite.Run(t, new(SerializerTestSuite))
}
