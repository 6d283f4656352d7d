package pagestore

// ============================================================================
// FileHeader — the 17-byte fixed header every page file opens with.
//
// Layout (little-endian), all offsets relative to byte 0 of the file:
//
//	[0,8)   signature  uint64  must equal headerSignature
//	[8,12)  version    uint32  must equal headerVersion
//	[12,13) type       uint8   caller-chosen page-file kind
//	[13,17) pageSize   uint32  fixed page size in bytes
// ============================================================================

import "encoding/binary"

const (
	headerSignature uint64 = 0xF19AC4FE60C530B8
	headerVersion   uint32 = 1

	// HeaderSize is the fixed on-disk header length in bytes.
	HeaderSize = 17
)

// FileHeader is the decoded form of the 17-byte page file header.
type FileHeader struct {
	Signature uint64
	Version   uint32
	Type      uint8
	PageSize  uint32
}

// newHeader builds the header this process would write for a fresh file of
// the given type and page size.
func newHeader(typ uint8, pageSize uint32) FileHeader {
	return FileHeader{
		Signature: headerSignature,
		Version:   headerVersion,
		Type:      typ,
		PageSize:  pageSize,
	}
}

// encode writes the header into buf, which must be at least HeaderSize bytes.
func (h FileHeader) encode(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], h.Signature)
	binary.LittleEndian.PutUint32(buf[8:12], h.Version)
	buf[12] = h.Type
	binary.LittleEndian.PutUint32(buf[13:17], h.PageSize)
}

// decodeHeader parses a HeaderSize-byte buffer into a FileHeader. It does not
// validate signature/version; callers compare against the configured values.
func decodeHeader(buf []byte) FileHeader {
	return FileHeader{
		Signature: binary.LittleEndian.Uint64(buf[0:8]),
		Version:   binary.LittleEndian.Uint32(buf[8:12]),
		Type:      buf[12],
		PageSize:  binary.LittleEndian.Uint32(buf[13:17]),
	}
}
