package tripleterm

import (
	"strings"

	"github.com/aleksaelezovic/factstore/internal/errors"
)

// scanState is where the cursor sits relative to string literals
type scanState int

const (
	stateOutside scanState = iota
	stateSingle
	stateDouble
	stateTripleSingle
	stateTripleDouble
)

// openTerm is one unclosed <<( on the stack
type openTerm struct {
	offset int // byte offset of the opener, for error messages
	depth  int // plain parentheses opened inside this term
}

// scanner is a single pass over the input. Nesting lives in an explicit
// stack so depth is bounded by memory rather than call depth.
type scanner struct {
	input  string
	pos    int
	length int
	state  scanState
	stack  []openTerm
	out    strings.Builder

	maxIterations int
	detectOnly    bool
	found         bool
}

func newScanner(input string, maxIterations int) *scanner {
	s := &scanner{
		input:         input,
		length:        len(input),
		maxIterations: maxIterations,
	}
	s.out.Grow(len(input))
	return s
}

func (s *scanner) run() error {
	for iterations := 0; s.pos < s.length; iterations++ {
		if iterations >= s.maxIterations {
			return errors.Wrapf(ErrIterationLimit, "stopped at offset %d after %d iterations", s.pos, iterations)
		}

		var err error
		switch s.state {
		case stateOutside:
			err = s.scanOutside()
		case stateSingle:
			s.scanString('\'')
		case stateDouble:
			s.scanString('"')
		case stateTripleSingle:
			s.scanLongString("'''")
		case stateTripleDouble:
			s.scanLongString(`"""`)
		}
		if err != nil {
			return err
		}
		if s.found && s.detectOnly {
			return nil
		}
	}

	if len(s.stack) > 0 {
		open := s.stack[len(s.stack)-1]
		return errors.WithDetailf(
			errors.Wrapf(ErrUnclosedTripleTerm, "opened at offset %d", open.offset),
			"%d triple term(s) still open at end of input", len(s.stack))
	}
	return nil
}

// scanOutside handles one step while not inside a string literal
func (s *scanner) scanOutside() error {
	c := s.input[s.pos]

	switch {
	case strings.HasPrefix(s.input[s.pos:], `"""`):
		s.emit(`"""`)
		s.state = stateTripleDouble
	case strings.HasPrefix(s.input[s.pos:], "'''"):
		s.emit("'''")
		s.state = stateTripleSingle
	case c == '"':
		s.emit(`"`)
		s.state = stateDouble
	case c == '\'':
		s.emit("'")
		s.state = stateSingle
	case c == '#':
		s.skipComment()
	case c == '<':
		if end, ok := s.matchOpener(); ok {
			return s.openTerm(end)
		}
		if end, ok := s.matchIRI(); ok {
			s.emit(s.input[s.pos:end])
			return nil
		}
		s.emit("<")
	case c == '(' && len(s.stack) > 0:
		s.stack[len(s.stack)-1].depth++
		s.emit("(")
	case c == ')' && len(s.stack) > 0:
		return s.closeParen()
	default:
		s.emit(s.input[s.pos : s.pos+1])
	}
	return nil
}

// matchOpener matches << followed by optional whitespace and (
func (s *scanner) matchOpener() (int, bool) {
	if !strings.HasPrefix(s.input[s.pos:], "<<") {
		return 0, false
	}
	i := skipSpace(s.input, s.pos+2)
	if i < s.length && s.input[i] == '(' {
		return i + 1, true
	}
	return 0, false
}

// matchCloser matches ) followed by optional whitespace and >>
func (s *scanner) matchCloser() (int, bool) {
	i := skipSpace(s.input, s.pos+1)
	if strings.HasPrefix(s.input[i:], ">>") {
		return i + 2, true
	}
	return 0, false
}

// matchIRI matches an IRI reference so characters inside it are never
// taken for quotes. A < followed by whitespace is an operator, not an IRI.
func (s *scanner) matchIRI() (int, bool) {
	for i := s.pos + 1; i < s.length; i++ {
		switch c := s.input[i]; {
		case c == '>':
			return i + 1, i > s.pos+1
		case c <= 0x20, c == '<', c == '"', c == '{', c == '}', c == '|', c == '^', c == '`', c == '\\':
			return 0, false
		}
	}
	return 0, false
}

// openTerm pushes a new triple term. Its subject may not start with (,
// since << followed by ( would read as another opener on a second pass.
func (s *scanner) openTerm(end int) error {
	s.found = true
	if next := skipSpace(s.input, end); next < s.length && s.input[next] == '(' {
		return errors.Wrapf(ErrCollectionSubject,
			"triple term opened at offset %d starts with ( at offset %d", s.pos, next)
	}
	s.stack = append(s.stack, openTerm{offset: s.pos})
	s.out.WriteString("<<")
	if end < s.length && !isSpace(s.input[end]) {
		s.out.WriteByte(' ')
	}
	s.pos = end
	return nil
}

// closeParen handles ) while a triple term is open
func (s *scanner) closeParen() error {
	top := &s.stack[len(s.stack)-1]
	if top.depth > 0 {
		top.depth--
		s.emit(")")
		return nil
	}

	end, ok := s.matchCloser()
	if !ok {
		return errors.Wrapf(ErrUnclosedTripleTerm,
			"opened at offset %d, closed by ) without >> at offset %d", top.offset, s.pos)
	}

	if s.pos > 0 && !isSpace(s.input[s.pos-1]) {
		s.out.WriteByte(' ')
	}
	s.out.WriteString(">>")
	s.stack = s.stack[:len(s.stack)-1]
	s.pos = end
	return nil
}

// scanString consumes a short string body up to and including the quote
func (s *scanner) scanString(quote byte) {
	start := s.pos
	for s.pos < s.length {
		c := s.input[s.pos]
		if c == '\\' {
			s.pos += 2
			continue
		}
		s.pos++
		if c == quote || c == '\n' {
			s.state = stateOutside
			break
		}
	}
	s.copyFrom(start)
}

// scanLongString consumes a triple-quoted body up to and including the
// closing delimiter
func (s *scanner) scanLongString(delim string) {
	start := s.pos
	for s.pos < s.length {
		if s.input[s.pos] == '\\' {
			s.pos += 2
			continue
		}
		if strings.HasPrefix(s.input[s.pos:], delim) {
			s.pos += len(delim)
			s.state = stateOutside
			break
		}
		s.pos++
	}
	s.copyFrom(start)
}

func (s *scanner) skipComment() {
	start := s.pos
	if i := strings.IndexByte(s.input[s.pos:], '\n'); i >= 0 {
		s.pos += i + 1
	} else {
		s.pos = s.length
	}
	s.copyFrom(start)
}

// emit copies text to the output and advances past it
func (s *scanner) emit(text string) {
	s.out.WriteString(text)
	s.pos += len(text)
}

func (s *scanner) copyFrom(start int) {
	if s.pos > s.length {
		s.pos = s.length
	}
	s.out.WriteString(s.input[start:s.pos])
}

func skipSpace(input string, i int) int {
	for i < len(input) && isSpace(input[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
