package encoding

import (
	"encoding/binary"

	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/aleksaelezovic/factstore/pkg/rdf"
)

var (
	// ErrCorruptPayload is returned when an id2str payload cannot be decoded
	ErrCorruptPayload = errors.New("corrupt term payload")

	// ErrCorruptKey is returned when an index key is too short
	ErrCorruptKey = errors.New("corrupt index key")
)

// TermDecoder handles decoding of RDF terms
type TermDecoder struct{}

// NewTermDecoder creates a new term decoder
func NewTermDecoder() *TermDecoder {
	return &TermDecoder{}
}

// DecodeTerm rebuilds a term from its encoded key and id2str payload
func (d *TermDecoder) DecodeTerm(encoded EncodedTerm, payload []byte) (rdf.Term, error) {
	switch kind := encoded.Kind(); kind {
	case KindNamedNode:
		node, err := rdf.NewNamedNode(string(payload))
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode IRI")
		}
		return node, nil

	case KindBlankNode:
		node, err := rdf.NewBlankNode(string(payload))
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode blank node")
		}
		return node, nil

	case KindStringLiteral, KindLangStringLiteral, KindDirLangStringLiteral, KindTypedLiteral:
		lit, err := decodeLiteralPayload(payload)
		if err != nil {
			return nil, err
		}
		return lit, nil

	default:
		return nil, errors.Wrapf(ErrCorruptPayload, "unknown term kind %d", byte(kind))
	}
}

func decodeLiteralPayload(payload []byte) (*rdf.Literal, error) {
	rest := payload
	fields := make([]string, 3)
	for i := range fields {
		n, size := binary.Uvarint(rest)
		if size <= 0 || uint64(len(rest)-size) < n {
			return nil, errors.Wrap(ErrCorruptPayload, "literal field length")
		}
		rest = rest[size:]
		fields[i] = string(rest[:n])
		rest = rest[n:]
	}
	if len(rest) != 1 {
		return nil, errors.Wrap(ErrCorruptPayload, "literal direction byte")
	}

	opts := rdf.LiteralOptions{Language: fields[2]}
	switch rest[0] {
	case dirLTR:
		opts.Direction = rdf.DirectionLTR
	case dirRTL:
		opts.Direction = rdf.DirectionRTL
	}
	if fields[1] != "" {
		datatype, err := rdf.NewNamedNode(fields[1])
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode datatype")
		}
		opts.Datatype = datatype
	}
	return rdf.NewLiteralWithOptions(fields[0], opts)
}
