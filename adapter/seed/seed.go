// Package seed reads book records from JSON and ships a sample bookstore
// dataset. Input is either a JSON array of objects or one object per line.
package seed

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dolmen-go/contextio"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/deserializer"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// ErrMalformed is returned when a record cannot be read as a book.
var ErrMalformed = errors.New("malformed seed record")

const maxLine = 1 << 20

//go:embed books.json
var sample []byte

// Loader reads [domain.BookRecord] values.
type Loader struct {
	deserializer domain.Deserializer
}

// NewLoader returns a new Loader.
func NewLoader(opts ...Option) *Loader {
	var l Loader
	for _, opt := range opts {
		opt(&l)
	}
	if l.deserializer == nil {
		l.deserializer = deserializer.NewDeserializer(nil)
	}
	return &l
}

// Sample returns the bundled sample dataset.
func (l *Loader) Sample(ctx context.Context) ([]domain.BookRecord, error) {
	return l.Load(ctx, bytes.NewReader(sample))
}

// Load reads every record of r. Titles must be present and unique. Reading
// stops as soon as ctx is done.
func (l *Loader) Load(ctx context.Context, r io.Reader) ([]domain.BookRecord, error) {
	br := bufio.NewReader(contextio.NewReader(ctx, r))

	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return []domain.BookRecord{}, nil
	}
	if err != nil {
		return nil, err
	}

	var books []domain.BookRecord
	if first == '[' {
		books, err = l.loadArray(ctx, br)
	} else {
		books, err = l.loadLines(ctx, br)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int, len(books))
	for n, b := range books {
		if prev, ok := seen[b.Title]; ok {
			return nil, fmt.Errorf("%w: record %d: title %q already used by record %d", ErrMalformed, n, b.Title, prev)
		}
		seen[b.Title] = n
	}
	return books, nil
}

func (l *Loader) loadArray(ctx context.Context, r io.Reader) ([]domain.BookRecord, error) {
	dec := json.NewDecoder(r)
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	books := []domain.BookRecord{}
	for n := 0; dec.More(); n++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, l.malformed(ctx, n, err)
		}
		b, err := l.record(ctx, n, raw)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if _, err := dec.Token(); err != nil {
		return nil, l.malformed(ctx, len(books), err)
	}
	return books, nil
}

func (l *Loader) loadLines(ctx context.Context, r io.Reader) ([]domain.BookRecord, error) {
	lines := bufio.NewScanner(r)
	lines.Buffer(nil, maxLine)

	books := []domain.BookRecord{}
	for lines.Scan() {
		line := bytes.TrimSpace(lines.Bytes())
		if len(line) == 0 {
			continue
		}
		b, err := l.record(ctx, len(books), line)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := lines.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

func (l *Loader) record(ctx context.Context, n int, raw []byte) (domain.BookRecord, error) {
	var b domain.BookRecord
	if err := l.deserializer.Deserialize(ctx, raw, &b); err != nil {
		return b, l.malformed(ctx, n, err)
	}
	if b.Title == "" {
		return b, fmt.Errorf("%w: record %d: missing title", ErrMalformed, n)
	}
	return b, nil
}

func (l *Loader) malformed(ctx context.Context, n int, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: record %d: %w", ErrMalformed, n, err)
}

// Insert adds books to the collection behind f, in order.
func Insert(ctx context.Context, f domain.Facade, books []domain.BookRecord) (domain.InsertResult, error) {
	records := make([]any, len(books))
	for n, b := range books {
		records[n] = b
	}
	return f.InsertMany(ctx, records...)
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := br.Discard(1); err != nil {
				return 0, err
			}
		default:
			return b[0], nil
		}
	}
}
