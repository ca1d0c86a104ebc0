package queryparser

import (
	"errors"
	"fmt"
	"strings"

	"indexcore/internal/analysis"
	"indexcore/internal/query"
	"indexcore/internal/schema"
)

var errSyntax = errors.New("queryparser: syntax error")

// ErrUnsupportedFieldKind is returned when a query binds a field via
// WithField that is not a text field. spec.md §4.8 leaves numeric-term
// queries unsupported (§9 open question); this module surfaces that
// as an explicit error rather than producing a query that silently
// never matches.
var ErrUnsupportedFieldKind = errors.New("queryparser: only text fields can be queried")

// ErrorKind distinguishes the two ParsingError categories spec.md §4.8
// and §6 name.
type ErrorKind int

const (
	// SyntaxError means the input did not match the query grammar.
	SyntaxError ErrorKind = iota
	// FieldDoesNotExist means a field_query named a field absent from
	// the schema.
	FieldDoesNotExist
)

// ParsingError is the error type ParseQuery returns for syntax errors
// and unknown fields; a field of the wrong kind yields
// ErrUnsupportedFieldKind instead.
type ParsingError struct {
	Kind  ErrorKind
	Field string // set only when Kind == FieldDoesNotExist
}

func (e *ParsingError) Error() string {
	switch e.Kind {
	case FieldDoesNotExist:
		return fmt.Sprintf("queryparser: field does not exist: %q", e.Field)
	default:
		return "queryparser: syntax error"
	}
}

// QueryParser compiles textual queries into a query.StandardQuery
// bound to schema, grounded on
// original_source/src/query/query_parser.rs's QueryParser.
type QueryParser struct {
	schema        *schema.Schema
	tokenizer     analysis.Tokenizer
	defaultFields []schema.Field
}

// New creates a QueryParser over schema, using tokenizer to produce
// terms from both field-bound and default-field text, and
// defaultFields as the fields a field-less literal expands against.
func New(sch *schema.Schema, tokenizer analysis.Tokenizer, defaultFields []schema.Field) *QueryParser {
	return &QueryParser{schema: sch, tokenizer: tokenizer, defaultFields: defaultFields}
}

// ParseQuery compiles query into a StandardQuery. Leading/trailing
// whitespace is trimmed before grammar matching, per spec.md §6.
func (p *QueryParser) ParseQuery(q string) (*query.StandardQuery, error) {
	literals, err := parseQuery(strings.TrimSpace(q))
	if err != nil {
		return nil, &ParsingError{Kind: SyntaxError}
	}

	var terms []query.TermQuery
	for _, lit := range literals {
		litTerms, err := p.transformLiteral(lit)
		if err != nil {
			return nil, err
		}
		terms = append(terms, litTerms...)
	}

	return &query.StandardQuery{MultiTerm: &query.MultiTermQuery{Terms: terms}}, nil
}

func (p *QueryParser) transformLiteral(lit literal) ([]query.TermQuery, error) {
	switch lit.kind {
	case literalDefaultField:
		var terms []query.TermQuery
		for _, f := range p.defaultFields {
			name, err := p.schema.FieldName(f)
			if err != nil {
				continue
			}
			for _, tok := range p.tokenize(lit.value) {
				terms = append(terms, query.TermQuery{Field: name, Value: tok})
			}
		}
		return terms, nil

	case literalWithField:
		f, ok := p.schema.GetField(lit.field)
		if !ok {
			return nil, &ParsingError{Kind: FieldDoesNotExist, Field: lit.field}
		}
		if _, err := p.schema.TextFieldOptions(f); err != nil {
			return nil, ErrUnsupportedFieldKind
		}
		var terms []query.TermQuery
		for _, tok := range p.tokenize(lit.value) {
			terms = append(terms, query.TermQuery{Field: lit.field, Value: tok})
		}
		return terms, nil

	default:
		return nil, errSyntax
	}
}

func (p *QueryParser) tokenize(text string) []string {
	var out []string
	ts := p.tokenizer.Tokenize(text)
	for ts.Next() {
		out = append(out, ts.Token())
	}
	return out
}
