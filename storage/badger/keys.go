package badger

import "encoding/binary"

// Key layout for the vector store
const (
	// generationPointerKey holds the live generation number.
	generationPointerKey = "kbgen"
	// entryPrefix namespaces document entries: kbent:<generation>:<id>
	entryPrefix = "kbent"
)

// makeGenerationPrefix generates the key prefix for all entries of a
// generation. The generation number is written in BigEndian order so
// lexicographic iteration stays within one generation.
func makeGenerationPrefix(gen uint64) []byte {
	prefix := entryPrefix + ":"
	buf := make([]byte, len(prefix)+9)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], gen)
	buf[offset+8] = ':'
	return buf
}

// makeEntryKey generates the key for a document entry within a generation.
func makeEntryKey(gen uint64, id string) []byte {
	prefix := makeGenerationPrefix(gen)
	buf := make([]byte, len(prefix)+len(id))
	offset := copy(buf, prefix)
	copy(buf[offset:], id)
	return buf
}

// marshalGeneration encodes a generation number for the pointer key.
func marshalGeneration(gen uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, gen)
	return buf
}

// unmarshalGeneration decodes a generation number from the pointer key.
func unmarshalGeneration(data []byte) uint64 {
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}
