package encoding

import (
	"encoding/binary"

	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/aleksaelezovic/factstore/pkg/rdf"
	"github.com/zeebo/xxh3"
)

const (
	// Encoded term size (kind byte + 16 bytes of 128-bit hash)
	EncodedTermSize = 17

	// HashSize is the size of the hash portion of an encoded term
	HashSize = 16
)

// Kind is the first byte of an encoded term. Literal kinds are split so an
// index scan can tell plain, language-tagged and typed literals apart
// without reading the id2str table.
type Kind byte

const (
	KindNamedNode Kind = iota + 1
	KindBlankNode
	KindStringLiteral
	KindLangStringLiteral
	KindDirLangStringLiteral
	KindTypedLiteral
)

func (k Kind) String() string {
	switch k {
	case KindNamedNode:
		return "iri"
	case KindBlankNode:
		return "bnode"
	case KindStringLiteral:
		return "string"
	case KindLangStringLiteral:
		return "langString"
	case KindDirLangStringLiteral:
		return "dirLangString"
	case KindTypedLiteral:
		return "typed"
	default:
		return "unknown"
	}
}

// direction codes stored in literal payloads
const (
	dirNone byte = iota
	dirLTR
	dirRTL
)

// EncodedTerm represents a term encoded as a kind byte followed by a 128-bit
// content hash. Two value-equal terms always encode to the same bytes.
type EncodedTerm [EncodedTermSize]byte

// Hash returns the hash portion, used as the id2str key
func (e EncodedTerm) Hash() []byte {
	return e[1:]
}

// Kind returns the kind byte
func (e EncodedTerm) Kind() Kind {
	return Kind(e[0])
}

// TermEncoder handles encoding of RDF terms into fixed-size keys
type TermEncoder struct{}

func NewTermEncoder() *TermEncoder {
	return &TermEncoder{}
}

// Hash128 computes a 128-bit xxhash3 hash of the input
func (e *TermEncoder) Hash128(b []byte) [HashSize]byte {
	hash := xxh3.Hash128(b)
	var result [HashSize]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// EncodeTerm encodes an RDF term into a fixed-size key.
// It also returns the payload to store in the id2str table so the term can be
// decoded again.
func (e *TermEncoder) EncodeTerm(term rdf.Term) (EncodedTerm, []byte, error) {
	var encoded EncodedTerm
	var payload []byte

	switch t := term.(type) {
	case *rdf.NamedNode:
		encoded[0] = byte(KindNamedNode)
		payload = []byte(t.IRI())
	case *rdf.BlankNode:
		encoded[0] = byte(KindBlankNode)
		payload = []byte(t.ID())
	case *rdf.Literal:
		encoded[0] = byte(literalKind(t))
		payload = encodeLiteralPayload(t)
	default:
		return encoded, nil, errors.Newf("unknown term type: %T", term)
	}

	// The kind byte is part of the hashed content so an IRI and a blank node
	// with the same text never share a hash.
	hashInput := make([]byte, 0, len(payload)+1)
	hashInput = append(hashInput, encoded[0])
	hashInput = append(hashInput, payload...)
	hash := e.Hash128(hashInput)
	copy(encoded[1:], hash[:])

	return encoded, payload, nil
}

func literalKind(lit *rdf.Literal) Kind {
	switch {
	case lit.Language() != "" && lit.Direction() != rdf.DirectionNone:
		return KindDirLangStringLiteral
	case lit.Language() != "":
		return KindLangStringLiteral
	case lit.Datatype() != nil:
		return KindTypedLiteral
	default:
		return KindStringLiteral
	}
}

// encodeLiteralPayload writes the literal as length-prefixed fields:
// value, datatype IRI, language, then one direction byte.
func encodeLiteralPayload(lit *rdf.Literal) []byte {
	var datatype string
	if lit.Datatype() != nil {
		datatype = lit.Datatype().IRI()
	}

	buf := make([]byte, 0, len(lit.Value())+len(datatype)+len(lit.Language())+3*binary.MaxVarintLen64+1)
	buf = binary.AppendUvarint(buf, uint64(len(lit.Value())))
	buf = append(buf, lit.Value()...)
	buf = binary.AppendUvarint(buf, uint64(len(datatype)))
	buf = append(buf, datatype...)
	buf = binary.AppendUvarint(buf, uint64(len(lit.Language())))
	buf = append(buf, lit.Language()...)

	switch lit.Direction() {
	case rdf.DirectionLTR:
		buf = append(buf, dirLTR)
	case rdf.DirectionRTL:
		buf = append(buf, dirRTL)
	default:
		buf = append(buf, dirNone)
	}
	return buf
}

// EncodeKey concatenates encoded terms into an index key.
// The result sorts lexicographically by the terms in the given order.
func EncodeKey(terms ...EncodedTerm) []byte {
	result := make([]byte, 0, len(terms)*EncodedTermSize)
	for _, term := range terms {
		result = append(result, term[:]...)
	}
	return result
}

// SplitKey cuts an index key back into its encoded terms
func SplitKey(key []byte, n int) ([]EncodedTerm, error) {
	if len(key) < n*EncodedTermSize {
		return nil, errors.Wrapf(ErrCorruptKey, "%d bytes, want at least %d", len(key), n*EncodedTermSize)
	}
	terms := make([]EncodedTerm, n)
	for i := 0; i < n; i++ {
		offset := i * EncodedTermSize
		copy(terms[i][:], key[offset:offset+EncodedTermSize])
	}
	return terms, nil
}
