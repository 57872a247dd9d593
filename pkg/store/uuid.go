package store

import (
	"github.com/google/uuid"
)

const uuidTextLen = 36

// ExtractUUIDs returns every hyphenated UUID that appears as a token in s.
// A token is not preceded or followed by a letter or digit.
// Results are deduplicated and keep their order of appearance.
func ExtractUUIDs(s string) []uuid.UUID {
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]struct{})

	for i := 0; i+uuidTextLen <= len(s); i++ {
		if i > 0 && isAlnum(s[i-1]) {
			continue
		}
		end := i + uuidTextLen
		if end < len(s) && isAlnum(s[end]) {
			continue
		}
		candidate := s[i:end]
		if !looksLikeUUID(candidate) {
			continue
		}
		id, err := uuid.Parse(candidate)
		if err != nil {
			continue
		}
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		i = end - 1
	}
	return ids
}

// looksLikeUUID checks the 8-4-4-4-12 layout
func looksLikeUUID(s string) bool {
	for i := 0; i < len(s); i++ {
		switch i {
		case 8, 13, 18, 23:
			if s[i] != '-' {
				return false
			}
		default:
			if !isHex(s[i]) {
				return false
			}
		}
	}
	return true
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
