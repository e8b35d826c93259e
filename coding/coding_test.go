package coding

import (
	"testing"
)

func TestVarIntRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []uint64{0, 1, 63, 64, 16383, 16384, 1073741823, 1073741824, maxVarInt}
	for _, v := range cases {
		w := NewWriter()
		if err := w.WriteVarInt(v); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", v, err)
		}
		r := NewReader(w.Bytes())
		got, err := r.ReadVarInt()
		if err != nil {
			t.Fatalf("ReadVarInt(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip mismatch: got %d, want %d", got, v)
		}
		if r.Remaining() != 0 {
			t.Fatalf("leftover bytes after decode: %d", r.Remaining())
		}
	}
}

func TestVarIntLengthClasses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		v      uint64
		nBytes int
	}{
		{0, 1},
		{63, 1},
		{64, 2},
		{16383, 2},
		{16384, 4},
		{1073741823, 4},
		{1073741824, 8},
	}
	for _, c := range cases {
		w := NewWriter()
		if err := w.WriteVarInt(c.v); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", c.v, err)
		}
		if len(w.Bytes()) != c.nBytes {
			t.Fatalf("value %d: got %d bytes, want %d", c.v, len(w.Bytes()), c.nBytes)
		}
	}
}

func TestVarIntTruncatedPrefixNeedsMore(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	_ = w.WriteVarInt(1073741824) // forces the 8-byte class
	full := w.Bytes()

	for n := 0; n < len(full); n++ {
		r := NewReader(full[:n])
		_, err := r.ReadVarInt()
		if err == nil {
			t.Fatalf("truncated to %d bytes: expected error", n)
		}
		de, ok := err.(*DecodeError)
		if !ok || de.Kind != ErrMore {
			t.Fatalf("truncated to %d bytes: got %v, want ErrMore", n, err)
		}
		if de.More == 0 {
			t.Fatalf("truncated to %d bytes: More must be > 0", n)
		}
	}
}

func TestBoundedStringRoundTrip(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	rp := ReasonPhrase("track ended")
	if err := rp.Encode(w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeReasonPhrase(NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != rp {
		t.Fatalf("got %q, want %q", got, rp)
	}
}

func TestBoundedStringRejectsOverLength(t *testing.T) {
	t.Parallel()

	rp := ReasonPhrase(make([]byte, maxReasonPhraseLen+1))
	w := NewWriter()
	if err := rp.Encode(w); err == nil {
		t.Fatalf("expected encode error for over-length reason phrase")
	}
}

func TestTrackNamespacePrefixAlgebra(t *testing.T) {
	t.Parallel()

	a := NewTrackNamespace("org", "example", "live")

	if !a.IsPrefixOf(a) {
		t.Fatalf("A.IsPrefixOf(A) must be true")
	}

	b := NewTrackNamespace("org", "example", "live", "cam1")
	if !a.IsPrefixOf(b) {
		t.Fatalf("expected %v to be a prefix of %v", a, b)
	}
	if b.IsPrefixOf(a) {
		t.Fatalf("did not expect %v to be a prefix of %v", b, a)
	}

	prefixes := b.Prefixes()
	if len(prefixes) != 4 {
		t.Fatalf("got %d prefixes, want 4", len(prefixes))
	}
	if !prefixes[0].Equal(b) {
		t.Fatalf("first prefix must be the namespace itself")
	}
	if prefixes[len(prefixes)-1].Len() != 1 {
		t.Fatalf("last prefix must have a single field")
	}
}

func TestTrackNamespaceRoundTrip(t *testing.T) {
	t.Parallel()

	ns := NewTrackNamespace("org", "example", "live")
	w := NewWriter()
	if err := ns.Encode(w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeTrackNamespace(NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.Equal(ns) {
		t.Fatalf("got %v, want %v", decoded, ns)
	}
}

func TestLocationOrdering(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b Location
		want int
	}{
		{Location{0, 0}, Location{0, 0}, 0},
		{Location{0, 1}, Location{0, 2}, -1},
		{Location{1, 0}, Location{0, 100}, 1},
		{Location{5, 5}, Location{5, 5}, 0},
	}
	for _, c := range cases {
		if got := c.a.Compare(c.b); got != c.want {
			t.Fatalf("%v.Compare(%v) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestKeyValuePairIntVariant(t *testing.T) {
	t.Parallel()

	kvp := NewIntPair(100, 100)
	w := NewWriter()
	if err := kvp.Encode(w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0x40, 0x64, 0x40, 0x64} // two 2-byte varints, top bits 01
	if string(w.Bytes()) != string(want) {
		t.Fatalf("got % x, want % x", w.Bytes(), want)
	}
	decoded, err := DecodeKeyValuePair(NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != kvp {
		t.Fatalf("got %+v, want %+v", decoded, kvp)
	}
}

func TestKeyValuePairBytesVariant(t *testing.T) {
	t.Parallel()

	kvp := NewBytesPair(1, []byte{0x01, 0x02, 0x03, 0x04, 0x05})
	w := NewWriter()
	if err := kvp.Encode(w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0x01, 0x05, 0x01, 0x02, 0x03, 0x04, 0x05}
	if string(w.Bytes()) != string(want) {
		t.Fatalf("got % x, want % x", w.Bytes(), want)
	}
}

func TestKeyValuePairParityViolations(t *testing.T) {
	t.Parallel()

	oddKeyInt := KeyValuePair{Key: 1, Value: IntValue(0)}
	if err := oddKeyInt.Encode(NewWriter()); err == nil {
		t.Fatalf("expected InvalidValue for odd key with int value")
	}

	evenKeyBytes := KeyValuePair{Key: 0, Value: BytesValue([]byte{1, 2, 3})}
	if err := evenKeyBytes.Encode(NewWriter()); err == nil {
		t.Fatalf("expected InvalidValue for even key with bytes value")
	}
}

func TestKeyValuePairsRejectsDuplicates(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	_ = w.WriteVarInt(2) // claim 2 pairs
	_ = NewIntPair(2, 1).Encode(w)
	_ = NewIntPair(2, 2).Encode(w)

	_, err := DecodeKeyValuePairs(NewReader(w.Bytes()))
	if err == nil {
		t.Fatalf("expected duplicate parameter error")
	}
	de, ok := err.(*DecodeError)
	if !ok || de.Kind != ErrDuplicateParameter {
		t.Fatalf("got %v, want ErrDuplicateParameter", err)
	}
}

func TestKeyValuePairsRoundTrip(t *testing.T) {
	t.Parallel()

	ps := NewKeyValuePairs()
	ps.SetInt(0, 0)
	ps.SetInt(100, 100)
	ps.SetBytes(1, []byte{1, 2, 3, 4, 5})

	w := NewWriter()
	if err := ps.Encode(w); err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeKeyValuePairs(NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(ps) {
		t.Fatalf("got %d pairs, want %d", len(decoded), len(ps))
	}
	for k, v := range ps {
		if decoded[k] != v {
			t.Fatalf("key %d: got %+v, want %+v", k, decoded[k], v)
		}
	}
}
