// Package projector contains the default [domain.Projector] implementation.
package projector

import (
	"fmt"

	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// ErrMixOmitType is returned when user provides a projection object with mixed
// "omit" and "show" operators.
var ErrMixOmitType = fmt.Errorf("%w: can't both keep and omit fields except for _id", domain.ErrInvalidSpec)

// Projector implements [domain.Projector].
type Projector struct{}

// NewProjector returns a new implementation of [domain.Projector].
func NewProjector() domain.Projector {
	return &Projector{}
}

// Project implements [domain.Projector]. Documents are never modified in
// place.
func (q *Projector) Project(docs []domain.Document, proj domain.Projection) ([]domain.Document, error) {
	if len(proj) == 0 {
		return docs, nil
	}

	keep, err := Mode(proj)
	if err != nil {
		return nil, err
	}

	id, idMentioned := proj[domain.FieldID]
	keepID := !idMentioned || id != 0

	res := make([]domain.Document, len(docs))
	for n, doc := range docs {
		var projected domain.Document
		if keep {
			projected = q.positiveProject(doc, proj)
		} else {
			projected = q.negativeProject(doc, proj)
		}

		if keepID {
			if v, ok := doc[domain.FieldID]; ok {
				projected[domain.FieldID] = v
			}
		} else {
			delete(projected, domain.FieldID)
		}
		res[n] = projected
	}

	return res, nil
}

// Mode reports whether proj keeps (true) or omits (false) the fields it lists,
// ignoring _id. A projection mentioning only _id keeps when it keeps _id.
func Mode(proj domain.Projection) (bool, error) {
	if id, ok := proj[domain.FieldID]; ok && len(proj) == 1 {
		return id > 0, nil
	}
	fields, oneFields := 0, 0
	for field, value := range proj {
		if field == domain.FieldID {
			continue
		}
		fields++
		if value > 0 {
			oneFields++
		}
	}
	if oneFields > 0 && oneFields != fields {
		return false, ErrMixOmitType
	}
	return oneFields > 0, nil
}

func (q *Projector) positiveProject(doc domain.Document, proj domain.Projection) domain.Document {
	res := make(domain.Document, len(proj))
	for field := range proj {
		if field == domain.FieldID {
			continue
		}
		if v, ok := doc[field]; ok {
			res[field] = v
		}
	}
	return res
}

func (q *Projector) negativeProject(doc domain.Document, proj domain.Projection) domain.Document {
	res := make(domain.Document, len(doc))
	for k, v := range doc {
		if _, omit := proj[k]; omit && k != domain.FieldID {
			continue
		}
		res[k] = v
	}
	return res
}
