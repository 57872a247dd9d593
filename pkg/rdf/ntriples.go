package rdf

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/aleksaelezovic/factstore/internal/errors"
)

// ErrSyntax marks N-Triples syntax errors
var ErrSyntax = errors.New("N-Triples syntax error")

// NTriplesParser parses N-Triples documents: <subject> <predicate> <object> .
// Language tags may carry an RDF 1.2 base direction (@ar--rtl).
type NTriplesParser struct {
	input  string
	pos    int
	length int
	line   int
}

// NewNTriplesParser creates a new N-Triples parser
func NewNTriplesParser(input string) *NTriplesParser {
	return &NTriplesParser{
		input:  input,
		length: len(input),
		line:   1,
	}
}

// ParseNTriples parses a whole N-Triples document
func ParseNTriples(input string) ([]*Triple, error) {
	return NewNTriplesParser(input).Parse()
}

// ParseTerm parses a single term in N-Triples syntax, e.g. `<http://x>`,
// `_:b0` or `"chat"@fr`.
func ParseTerm(input string) (Term, error) {
	p := NewNTriplesParser(strings.TrimSpace(input))
	if p.length == 0 {
		return nil, p.errorf("empty term")
	}
	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	p.skipWhitespaceAndComments()
	if p.pos < p.length {
		return nil, p.errorf("unexpected trailing input %q", p.input[p.pos:])
	}
	return term, nil
}

// Parse parses the document and returns its triples
func (p *NTriplesParser) Parse() ([]*Triple, error) {
	var triples []*Triple

	for p.pos < p.length {
		p.skipWhitespaceAndComments()
		if p.pos >= p.length {
			break
		}

		triple, err := p.parseTriple()
		if err != nil {
			return nil, err
		}
		triples = append(triples, triple)
	}

	return triples, nil
}

func (p *NTriplesParser) errorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf("line %d: "+format, append([]interface{}{p.line}, args...)...), ErrSyntax)
}

// skipWhitespaceAndComments skips whitespace and comments
func (p *NTriplesParser) skipWhitespaceAndComments() {
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == '\n' {
			p.line++
			p.pos++
			continue
		}
		if ch == ' ' || ch == '\t' || ch == '\r' {
			p.pos++
			continue
		}
		if ch == '#' {
			for p.pos < p.length && p.input[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		break
	}
}

// parseTriple parses: subject predicate object .
func (p *NTriplesParser) parseTriple() (*Triple, error) {
	subjectTerm, err := p.parseTerm()
	if err != nil {
		return nil, errors.Wrap(err, "error parsing subject")
	}
	subject, ok := subjectTerm.(Subject)
	if !ok {
		return nil, p.errorf("subject must be an IRI or blank node, got %s", subjectTerm)
	}

	p.skipWhitespaceAndComments()
	if p.pos >= p.length {
		return nil, p.errorf("unexpected end of input after subject")
	}

	predicateTerm, err := p.parseTerm()
	if err != nil {
		return nil, errors.Wrap(err, "error parsing predicate")
	}
	predicate, ok := predicateTerm.(*NamedNode)
	if !ok {
		return nil, p.errorf("predicate must be an IRI, got %s", predicateTerm)
	}

	p.skipWhitespaceAndComments()
	if p.pos >= p.length {
		return nil, p.errorf("unexpected end of input after predicate")
	}

	object, err := p.parseTerm()
	if err != nil {
		return nil, errors.Wrap(err, "error parsing object")
	}

	p.skipWhitespaceAndComments()
	if p.pos >= p.length || p.input[p.pos] != '.' {
		return nil, p.errorf("expected '.' at end of triple")
	}
	p.pos++

	return NewTriple(subject, predicate, object)
}

// parseTerm parses an IRI, blank node or literal
func (p *NTriplesParser) parseTerm() (Term, error) {
	switch p.input[p.pos] {
	case '<':
		if strings.HasPrefix(p.input[p.pos:], "<<") {
			return nil, p.errorf("triple terms are not supported in stored data")
		}
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		node, err := NewNamedNode(iri)
		if err != nil {
			return nil, errors.Mark(err, ErrSyntax)
		}
		return node, nil
	case '_':
		return p.parseBlankNode()
	case '"':
		return p.parseLiteral()
	default:
		return nil, p.errorf("unexpected character %q", p.input[p.pos])
	}
}

// parseIRI parses an IRI enclosed in < >
func (p *NTriplesParser) parseIRI() (string, error) {
	p.pos++ // skip '<'

	var result strings.Builder
	for p.pos < p.length && p.input[p.pos] != '>' {
		ch := p.input[p.pos]
		if ch == '\\' {
			escaped, err := p.processUnicodeEscape()
			if err != nil {
				return "", err
			}
			result.WriteString(escaped)
			continue
		}
		result.WriteByte(ch)
		p.pos++
	}

	if p.pos >= p.length {
		return "", p.errorf("unclosed IRI")
	}
	p.pos++ // skip '>'
	return result.String(), nil
}

// parseBlankNode parses _:label
func (p *NTriplesParser) parseBlankNode() (Term, error) {
	p.pos++ // skip '_'
	if p.pos >= p.length || p.input[p.pos] != ':' {
		return nil, p.errorf("expected ':' after '_' in blank node")
	}
	p.pos++

	start := p.pos
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '<' || ch == '"' {
			break
		}
		// a trailing '.' ends the statement, not the label
		if ch == '.' && (p.pos+1 >= p.length || strings.ContainsRune(" \t\r\n#", rune(p.input[p.pos+1]))) {
			break
		}
		p.pos++
	}

	node, err := NewBlankNode(p.input[start:p.pos])
	if err != nil {
		return nil, errors.Mark(err, ErrSyntax)
	}
	return node, nil
}

// parseLiteral parses a quoted literal with its optional language tag or datatype
func (p *NTriplesParser) parseLiteral() (Term, error) {
	p.pos++ // skip opening '"'

	var value strings.Builder
	for p.pos < p.length && p.input[p.pos] != '"' {
		ch := p.input[p.pos]
		if ch == '\n' {
			return nil, p.errorf("newline in string literal")
		}
		if ch != '\\' {
			value.WriteByte(ch)
			p.pos++
			continue
		}
		if p.pos+1 >= p.length {
			return nil, p.errorf("unexpected end of input in escape sequence")
		}
		switch esc := p.input[p.pos+1]; esc {
		case 'n':
			value.WriteByte('\n')
		case 't':
			value.WriteByte('\t')
		case 'r':
			value.WriteByte('\r')
		case 'b':
			value.WriteByte('\b')
		case 'f':
			value.WriteByte('\f')
		case '"':
			value.WriteByte('"')
		case '\'':
			value.WriteByte('\'')
		case '\\':
			value.WriteByte('\\')
		case 'u', 'U':
			escaped, err := p.processUnicodeEscape()
			if err != nil {
				return nil, err
			}
			value.WriteString(escaped)
			continue
		default:
			return nil, p.errorf("invalid escape sequence \\%c", esc)
		}
		p.pos += 2
	}

	if p.pos >= p.length {
		return nil, p.errorf("unclosed string literal")
	}
	p.pos++ // skip closing '"'

	if p.pos < p.length && p.input[p.pos] == '@' {
		p.pos++
		start := p.pos
		for p.pos < p.length {
			ch := p.input[p.pos]
			if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '.' || ch == '<' {
				break
			}
			p.pos++
		}
		langTag := p.input[start:p.pos]
		lang, dir, hasDir := strings.Cut(langTag, "--")
		if hasDir && dir == "" {
			return nil, p.errorf("missing direction after '--' in language tag")
		}
		lit, err := NewLiteralWithOptions(value.String(), LiteralOptions{Language: lang, Direction: Direction(dir)})
		if err != nil {
			return nil, errors.Mark(err, ErrSyntax)
		}
		return lit, nil
	}

	if strings.HasPrefix(p.input[p.pos:], "^^") {
		p.pos += 2
		if p.pos >= p.length || p.input[p.pos] != '<' {
			return nil, p.errorf("expected datatype IRI after '^^'")
		}
		iri, err := p.parseIRI()
		if err != nil {
			return nil, errors.Wrap(err, "error parsing datatype")
		}
		datatype, err := NewNamedNode(iri)
		if err != nil {
			return nil, errors.Mark(err, ErrSyntax)
		}
		return NewTypedLiteral(value.String(), datatype), nil
	}

	return NewLiteral(value.String()), nil
}

// processUnicodeEscape processes \uXXXX or \UXXXXXXXX escape sequences
func (p *NTriplesParser) processUnicodeEscape() (string, error) {
	if p.pos+1 >= p.length {
		return "", p.errorf("unexpected end of input in escape sequence")
	}
	var hexDigits int
	switch p.input[p.pos+1] {
	case 'u':
		hexDigits = 4
	case 'U':
		hexDigits = 8
	default:
		return "", p.errorf("invalid escape sequence \\%c", p.input[p.pos+1])
	}
	p.pos += 2

	if p.pos+hexDigits > p.length {
		return "", p.errorf("incomplete Unicode escape sequence")
	}
	hexStr := p.input[p.pos : p.pos+hexDigits]
	codePoint, err := strconv.ParseUint(hexStr, 16, 32)
	if err != nil {
		return "", p.errorf("invalid hex digits in Unicode escape: %s", hexStr)
	}
	p.pos += hexDigits
	return string(rune(codePoint)), nil
}

// WriteNTriples writes triples one per line in N-Triples syntax
func WriteNTriples(w io.Writer, triples []*Triple) error {
	bw := bufio.NewWriter(w)
	for _, t := range triples {
		if _, err := bw.WriteString(t.String()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
