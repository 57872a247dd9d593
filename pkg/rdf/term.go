package rdf

import (
	"strconv"
	"strings"
	"time"

	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/google/uuid"
)

// ErrInvalidTerm marks every term construction failure
var ErrInvalidTerm = errors.New("invalid RDF term")

// TermType represents the type of an RDF term
type TermType byte

const (
	TermTypeNamedNode TermType = iota + 1
	TermTypeBlankNode
	TermTypeLiteral
)

func (t TermType) String() string {
	switch t {
	case TermTypeNamedNode:
		return "iri"
	case TermTypeBlankNode:
		return "bnode"
	case TermTypeLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Term represents an RDF term (IRI, blank node, or literal).
// The set of implementations is closed: only this package can add one.
type Term interface {
	Type() TermType
	String() string
	Equals(other Term) bool
	isTerm()
}

// IsNil reports whether term is absent: a nil interface or a nil pointer
// of one of the term types.
func IsNil(term Term) bool {
	switch t := term.(type) {
	case nil:
		return true
	case *NamedNode:
		return t == nil
	case *BlankNode:
		return t == nil
	case *Literal:
		return t == nil
	default:
		return false
	}
}

// Subject is a term allowed in subject position (IRI or blank node)
type Subject interface {
	Term
	isSubject()
}

// NamedNode represents an IRI
type NamedNode struct {
	iri string
}

// NewNamedNode creates an IRI term, rejecting empty or relative values
func NewNamedNode(iri string) (*NamedNode, error) {
	if err := validateIRI(iri); err != nil {
		return nil, err
	}
	return &NamedNode{iri: iri}, nil
}

// MustNamedNode is like NewNamedNode but panics on an invalid IRI
func MustNamedNode(iri string) *NamedNode {
	n, err := NewNamedNode(iri)
	if err != nil {
		panic(err)
	}
	return n
}

func (n *NamedNode) IRI() string {
	return n.iri
}

func (n *NamedNode) Type() TermType {
	return TermTypeNamedNode
}

func (n *NamedNode) String() string {
	return "<" + n.iri + ">"
}

func (n *NamedNode) Equals(other Term) bool {
	if on, ok := other.(*NamedNode); ok {
		return n.iri == on.iri
	}
	return false
}

func (*NamedNode) isTerm()    {}
func (*NamedNode) isSubject() {}

// validateIRI checks that s looks like an absolute IRI: a scheme followed by ':'
// and no characters that N-Triples forbids inside <...>.
func validateIRI(s string) error {
	if s == "" {
		return errors.Mark(errors.New("IRI must not be empty"), ErrInvalidTerm)
	}
	colon := strings.IndexByte(s, ':')
	if colon <= 0 {
		return errors.Mark(errors.Newf("IRI %q is not absolute: missing scheme", s), ErrInvalidTerm)
	}
	for i := 0; i < colon; i++ {
		ch := s[i]
		isAlpha := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
		if i == 0 && !isAlpha {
			return errors.Mark(errors.Newf("IRI %q has invalid scheme", s), ErrInvalidTerm)
		}
		if !isAlpha && !(ch >= '0' && ch <= '9') && ch != '+' && ch != '-' && ch != '.' {
			return errors.Mark(errors.Newf("IRI %q has invalid scheme", s), ErrInvalidTerm)
		}
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch <= 0x20 || ch == '<' || ch == '>' || ch == '"' || ch == '{' || ch == '}' ||
			ch == '|' || ch == '^' || ch == '`' || ch == '\\' {
			return errors.Mark(errors.Newf("invalid character %q in IRI %q", ch, s), ErrInvalidTerm)
		}
	}
	return nil
}

// BlankNode represents a blank node. Its label is only meaningful within
// one store.
type BlankNode struct {
	id string
}

// NewBlankNode creates a blank node with the given label
func NewBlankNode(id string) (*BlankNode, error) {
	if id == "" {
		return nil, errors.Mark(errors.New("blank node label must not be empty"), ErrInvalidTerm)
	}
	if strings.ContainsAny(id, " \t\r\n<>\"") {
		return nil, errors.Mark(errors.Newf("invalid blank node label %q", id), ErrInvalidTerm)
	}
	return &BlankNode{id: id}, nil
}

// MustBlankNode is like NewBlankNode but panics on an invalid label
func MustBlankNode(id string) *BlankNode {
	b, err := NewBlankNode(id)
	if err != nil {
		panic(err)
	}
	return b
}

// NewUniqueBlankNode creates a blank node with a fresh random label
func NewUniqueBlankNode() *BlankNode {
	return &BlankNode{id: "b" + strings.ReplaceAll(uuid.NewString(), "-", "")}
}

func (b *BlankNode) ID() string {
	return b.id
}

func (b *BlankNode) Type() TermType {
	return TermTypeBlankNode
}

func (b *BlankNode) String() string {
	return "_:" + b.id
}

func (b *BlankNode) Equals(other Term) bool {
	if ob, ok := other.(*BlankNode); ok {
		return b.id == ob.id
	}
	return false
}

func (*BlankNode) isTerm()    {}
func (*BlankNode) isSubject() {}

// Direction is the base direction of a directional language-tagged string
type Direction string

const (
	DirectionNone Direction = ""
	DirectionLTR  Direction = "ltr"
	DirectionRTL  Direction = "rtl"
)

// LiteralOptions carries the optional parts of a literal
type LiteralOptions struct {
	Datatype  *NamedNode
	Language  string
	Direction Direction
}

// Literal represents an RDF literal. At most one of datatype and language
// is set, and a direction requires a language.
type Literal struct {
	value     string
	datatype  *NamedNode
	language  string
	direction Direction
}

// NewLiteralWithOptions creates a literal, enforcing the datatype/language
// exclusivity and the direction rules.
func NewLiteralWithOptions(value string, opts LiteralOptions) (*Literal, error) {
	if opts.Datatype != nil && opts.Language != "" {
		return nil, errors.Mark(
			errors.Newf("literal %q cannot have both datatype %s and language %q", value, opts.Datatype, opts.Language),
			ErrInvalidTerm)
	}
	if opts.Direction != DirectionNone {
		if opts.Language == "" {
			return nil, errors.Mark(errors.Newf("literal %q has direction %q without a language", value, opts.Direction), ErrInvalidTerm)
		}
		if opts.Direction != DirectionLTR && opts.Direction != DirectionRTL {
			return nil, errors.Mark(errors.Newf("invalid direction %q (must be 'ltr' or 'rtl')", opts.Direction), ErrInvalidTerm)
		}
	}
	if opts.Language != "" && !validLanguageTag(opts.Language) {
		return nil, errors.Mark(errors.Newf("invalid language tag %q", opts.Language), ErrInvalidTerm)
	}
	return &Literal{
		value:     value,
		datatype:  opts.Datatype,
		language:  opts.Language,
		direction: opts.Direction,
	}, nil
}

// NewLiteral creates a plain string literal
func NewLiteral(value string) *Literal {
	return &Literal{value: value}
}

// NewTypedLiteral creates a literal with a datatype
func NewTypedLiteral(value string, datatype *NamedNode) *Literal {
	return &Literal{value: value, datatype: datatype}
}

// NewLangLiteral creates a language-tagged literal
func NewLangLiteral(value, language string) (*Literal, error) {
	return NewLiteralWithOptions(value, LiteralOptions{Language: language})
}

// NewDirLangLiteral creates a directional language-tagged literal (RDF 1.2)
func NewDirLangLiteral(value, language string, direction Direction) (*Literal, error) {
	return NewLiteralWithOptions(value, LiteralOptions{Language: language, Direction: direction})
}

// validLanguageTag accepts BCP 47 shaped tags: a letter run followed by
// '-'-separated alphanumeric subtags.
func validLanguageTag(tag string) bool {
	for i, part := range strings.Split(tag, "-") {
		if part == "" || len(part) > 8 {
			return false
		}
		for j := 0; j < len(part); j++ {
			ch := part[j]
			isAlpha := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
			if i == 0 && !isAlpha {
				return false
			}
			if !isAlpha && !(ch >= '0' && ch <= '9') {
				return false
			}
		}
	}
	return true
}

func (l *Literal) Value() string {
	return l.value
}

// Datatype returns the explicit datatype, or nil for plain and
// language-tagged literals.
func (l *Literal) Datatype() *NamedNode {
	return l.datatype
}

func (l *Literal) Language() string {
	return l.language
}

func (l *Literal) Direction() Direction {
	return l.direction
}

func (l *Literal) Type() TermType {
	return TermTypeLiteral
}

// String renders the literal in N-Triples syntax
func (l *Literal) String() string {
	return `"` + EscapeString(l.value) + `"` + l.suffix()
}

// Lexical renders value, value^^<datatype> or value@lang[--dir] without quoting
func (l *Literal) Lexical() string {
	return l.value + l.suffix()
}

func (l *Literal) suffix() string {
	if l.language != "" {
		if l.direction != DirectionNone {
			return "@" + l.language + "--" + string(l.direction)
		}
		return "@" + l.language
	}
	if l.datatype != nil {
		return "^^" + l.datatype.String()
	}
	return ""
}

func (l *Literal) Equals(other Term) bool {
	ol, ok := other.(*Literal)
	if !ok {
		return false
	}
	if l.value != ol.value || l.language != ol.language || l.direction != ol.direction {
		return false
	}
	if l.datatype == nil || ol.datatype == nil {
		return l.datatype == nil && ol.datatype == nil
	}
	return l.datatype.Equals(ol.datatype)
}

func (*Literal) isTerm() {}

// EscapeString escapes a literal value for N-Triples output
func EscapeString(s string) string {
	if !strings.ContainsAny(s, "\\\"\n\r\t") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// Helper functions for common XSD datatypes
var (
	XSDString            = MustNamedNode("http://www.w3.org/2001/XMLSchema#string")
	XSDInteger           = MustNamedNode("http://www.w3.org/2001/XMLSchema#integer")
	XSDDecimal           = MustNamedNode("http://www.w3.org/2001/XMLSchema#decimal")
	XSDDouble            = MustNamedNode("http://www.w3.org/2001/XMLSchema#double")
	XSDBoolean           = MustNamedNode("http://www.w3.org/2001/XMLSchema#boolean")
	XSDDateTime          = MustNamedNode("http://www.w3.org/2001/XMLSchema#dateTime")
	XSDDate              = MustNamedNode("http://www.w3.org/2001/XMLSchema#date")
	XSDDuration          = MustNamedNode("http://www.w3.org/2001/XMLSchema#duration")
	XSDDayTimeDuration   = MustNamedNode("http://www.w3.org/2001/XMLSchema#dayTimeDuration")
	XSDYearMonthDuration = MustNamedNode("http://www.w3.org/2001/XMLSchema#yearMonthDuration")

	RDFLangString    = MustNamedNode("http://www.w3.org/1999/02/22-rdf-syntax-ns#langString")
	RDFDirLangString = MustNamedNode("http://www.w3.org/1999/02/22-rdf-syntax-ns#dirLangString")
)

func NewIntegerLiteral(value int64) *Literal {
	return NewTypedLiteral(strconv.FormatInt(value, 10), XSDInteger)
}

func NewDoubleLiteral(value float64) *Literal {
	return NewTypedLiteral(strconv.FormatFloat(value, 'g', -1, 64), XSDDouble)
}

func NewBooleanLiteral(value bool) *Literal {
	return NewTypedLiteral(strconv.FormatBool(value), XSDBoolean)
}

func NewDateTimeLiteral(value time.Time) *Literal {
	return NewTypedLiteral(value.Format(time.RFC3339), XSDDateTime)
}
