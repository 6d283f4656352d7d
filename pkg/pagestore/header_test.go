package pagestore

import "testing"

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := newHeader(3, 8192)
	buf := make([]byte, HeaderSize)
	h.encode(buf)

	got := decodeHeader(buf)
	if got.Signature != headerSignature {
		t.Fatalf("signature = 0x%x, want 0x%x", got.Signature, headerSignature)
	}
	if got.Version != headerVersion {
		t.Fatalf("version = %d, want %d", got.Version, headerVersion)
	}
	if got.Type != 3 {
		t.Fatalf("type = %d, want 3", got.Type)
	}
	if got.PageSize != 8192 {
		t.Fatalf("pageSize = %d, want 8192", got.PageSize)
	}
}
