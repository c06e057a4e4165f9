// Package search maps optional, named filter parameters onto GORM queries.
//
// A Search is a registry of fields, each owning a predicate. Normalize turns a
// raw parameter bag into a Form holding only the fields the Search knows about,
// and Apply narrows a query with one predicate per present field. Predicates
// are ANDed together, so the order they run in never changes the result.
package search

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

type kind int

const (
	textKind kind = iota
	intKind
)

type field struct {
	key   string
	kind  kind
	apply func(db *gorm.DB, value any) *gorm.DB
}

type relation struct {
	key    string
	join   string
	search *Search
}

// Search is built once at startup and is safe for concurrent use afterwards.
type Search struct {
	fields    []field
	relations []relation
}

func New() *Search {
	return &Search{}
}

// Contains registers a case-insensitive substring filter on column.
func (s *Search) Contains(key, column string) *Search {
	where := "LOWER(" + column + `) LIKE ? ESCAPE '\'`
	s.fields = append(s.fields, field{
		key:  key,
		kind: textKind,
		apply: func(db *gorm.DB, value any) *gorm.DB {
			return db.Where(where, "%"+escapeLike(strings.ToLower(value.(string)))+"%")
		},
	})
	return s
}

// Range registers inclusive bounds on column as key_gteq and key_lteq.
func (s *Search) Range(key, column string) *Search {
	s.fields = append(s.fields,
		field{
			key:  key + "_gteq",
			kind: intKind,
			apply: func(db *gorm.DB, value any) *gorm.DB {
				return db.Where(column+" >= ?", value)
			},
		},
		field{
			key:  key + "_lteq",
			kind: intKind,
			apply: func(db *gorm.DB, value any) *gorm.DB {
				return db.Where(column+" <= ?", value)
			},
		},
	)
	return s
}

// Join registers a nested form under key. When present, join is added to the
// query and child's predicates are applied to the joined table.
func (s *Search) Join(key, join string, child *Search) *Search {
	s.relations = append(s.relations, relation{key: key, join: join, search: child})
	return s
}

// Keys lists the recognized field names, nested ones as "state[name]".
func (s *Search) Keys() []string {
	var keys []string
	for _, f := range s.fields {
		keys = append(keys, f.key)
	}
	for _, r := range s.relations {
		for _, k := range r.search.Keys() {
			head, tail := k, ""
			if i := strings.IndexByte(k, '['); i >= 0 {
				head, tail = k[:i], k[i:]
			}
			keys = append(keys, r.key+"["+head+"]"+tail)
		}
	}
	return keys
}

// Form parses the q[...] parameters of a query string and normalizes them.
func (s *Search) Form(values url.Values) (Form, error) {
	return s.Normalize(ParseQuery(values, DefaultRoot))
}

// Normalize keeps the fields s recognizes, drops blank values and coerces
// numeric fields. Unknown keys are ignored.
func (s *Search) Normalize(p Params) (Form, error) {
	return s.normalize(p, "")
}

func (s *Search) normalize(p Params, prefix string) (Form, error) {
	var form Form

	for _, f := range s.fields {
		raw, ok := p.Values[f.key]
		if !ok {
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		switch f.kind {
		case intKind:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return Form{}, &InvalidValueError{Field: prefix + f.key, Value: raw, Err: err}
			}
			form.setField(f.key, n)
		default:
			form.setField(f.key, norm.NFC.String(raw))
		}
	}

	for _, r := range s.relations {
		sub, ok := p.Children[r.key]
		if !ok {
			continue
		}
		child, err := r.search.normalize(sub, prefix+r.key+".")
		if err != nil {
			return Form{}, err
		}
		if !child.Empty() {
			form.setNested(r.key, child)
		}
	}

	return form, nil
}

// Apply narrows db with one predicate per field present in form.
func (s *Search) Apply(db *gorm.DB, form Form) *gorm.DB {
	for _, f := range s.fields {
		if v, ok := form.Fields[f.key]; ok {
			db = f.apply(db, v)
		}
	}
	for _, r := range s.relations {
		if child, ok := form.Nested[r.key]; ok {
			db = r.search.Apply(db.Joins(r.join), child)
		}
	}
	return db
}

// Scope adapts Apply for db.Scopes.
func (s *Search) Scope(form Form) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return s.Apply(db, form)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
