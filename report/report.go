// Package report holds the canned bookstore queries as data. Each [Report]
// is a named sequence of facade calls whose results a [Runner] renders as
// indented JSON.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dolmen-go/contextio"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/serializer"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// ErrUnknownReport is returned by [Select] for a name no report has.
var ErrUnknownReport = errors.New("unknown report")

// Report is a named query over the books collection.
type Report struct {
	Section string
	Name    string
	Title   string
	// Mutates is set on reports that change documents. They only run when
	// writes are allowed.
	Mutates bool
	// Manual reports only run when selected by name.
	Manual bool
	Run    func(ctx context.Context, f domain.Facade) ([]any, error)
}

// Select returns the catalog reports with the given names, in the order
// given. Without names it returns every report that is not manual.
func Select(names ...string) ([]Report, error) {
	catalog := Catalog()
	if len(names) == 0 {
		res := make([]Report, 0, len(catalog))
		for _, r := range catalog {
			if !r.Manual {
				res = append(res, r)
			}
		}
		return res, nil
	}

	byName := make(map[string]Report, len(catalog))
	for _, r := range catalog {
		byName[r.Name] = r
	}
	res := make([]Report, 0, len(names))
	for _, name := range names {
		r, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownReport, name)
		}
		res = append(res, r)
	}
	return res, nil
}

// Runner runs reports against a facade and writes their output.
type Runner struct {
	facade      domain.Facade
	out         io.Writer
	serializer  domain.Serializer
	allowWrites bool
	log         *slog.Logger
}

// NewRunner returns a Runner that writes to out.
func NewRunner(f domain.Facade, out io.Writer, opts ...Option) *Runner {
	r := Runner{facade: f, out: out}
	for _, opt := range opts {
		opt(&r)
	}
	if r.serializer == nil {
		r.serializer = serializer.NewSerializer(serializer.WithIndent("  "))
	}
	if r.log == nil {
		r.log = slog.New(slog.DiscardHandler)
	}
	return &r
}

// Run runs every report in order. A failing report does not stop the
// others; all failures are returned joined. Mutating reports are skipped
// unless writes are allowed.
func (r *Runner) Run(ctx context.Context, reports ...Report) error {
	w := contextio.NewWriter(ctx, r.out)

	var errs []error
	for _, rep := range reports {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		if rep.Mutates && !r.allowWrites {
			r.log.WarnContext(ctx, "skipping mutating report", "report", rep.Name)
			continue
		}

		r.log.InfoContext(ctx, "running report", "report", rep.Name, "section", rep.Section)
		if err := r.runOne(ctx, w, rep); err != nil {
			r.log.ErrorContext(ctx, "report failed", "report", rep.Name, "error", err)
			errs = append(errs, fmt.Errorf("report %s: %w", rep.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) runOne(ctx context.Context, w io.Writer, rep Report) error {
	values, err := rep.Run(ctx, r.facade)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\n== %s: %s ==\n", rep.Name, rep.Title); err != nil {
		return err
	}
	if len(values) == 0 {
		_, err := io.WriteString(w, "(no results)\n")
		return err
	}
	for _, v := range values {
		b, err := r.serializer.Serialize(ctx, v)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}
