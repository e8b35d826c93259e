package coding

// maxKVPBytesLen bounds the byte-string variant of a KeyValuePair value.
const maxKVPBytesLen = 0xffff

// ValueKind distinguishes the two KeyValuePair value shapes.
type ValueKind int

const (
	KindInt ValueKind = iota
	KindBytes
)

// Value is either an integer or a byte string, selected by the
// parity of the owning KeyValuePair's key.
type Value struct {
	Kind  ValueKind
	Int   uint64
	Bytes []byte
}

// IntValue constructs an integer-valued Value.
func IntValue(v uint64) Value { return Value{Kind: KindInt, Int: v} }

// BytesValue constructs a byte-string-valued Value.
func BytesValue(v []byte) Value { return Value{Kind: KindBytes, Bytes: v} }

// KeyValuePair is a single typed parameter. Even keys must carry an
// integer value; odd keys must carry a byte string value. This parity
// is an invariant enforced by Encode and Decode alike.
type KeyValuePair struct {
	Key   uint64
	Value Value
}

// NewIntPair builds an even-keyed integer parameter.
func NewIntPair(key, v uint64) KeyValuePair {
	return KeyValuePair{Key: key, Value: IntValue(v)}
}

// NewBytesPair builds an odd-keyed byte-string parameter.
func NewBytesPair(key uint64, v []byte) KeyValuePair {
	return KeyValuePair{Key: key, Value: BytesValue(v)}
}

// Encode writes the pair, enforcing the key-parity/value-kind
// invariant.
func (p KeyValuePair) Encode(w *Writer) error {
	switch p.Value.Kind {
	case KindInt:
		if p.Key%2 != 0 {
			return &EncodeError{Kind: ErrInvalidValue}
		}
		if err := w.WriteVarInt(p.Key); err != nil {
			return err
		}
		return w.WriteVarInt(p.Value.Int)
	case KindBytes:
		if p.Key%2 == 0 {
			return &EncodeError{Kind: ErrInvalidValue}
		}
		if err := w.WriteVarInt(p.Key); err != nil {
			return err
		}
		return w.WriteVarIntBytes(p.Value.Bytes)
	default:
		return &EncodeError{Kind: ErrInvalidValue}
	}
}

// DecodeKeyValuePair reads a single KeyValuePair, dispatching on the
// key's parity.
func DecodeKeyValuePair(r *Reader) (KeyValuePair, error) {
	key, err := r.ReadVarInt()
	if err != nil {
		return KeyValuePair{}, err
	}

	if key%2 == 0 {
		v, err := r.ReadVarInt()
		if err != nil {
			return KeyValuePair{}, err
		}
		return NewIntPair(key, v), nil
	}

	length, err := r.ReadVarInt()
	if err != nil {
		return KeyValuePair{}, err
	}
	if length > maxKVPBytesLen {
		return KeyValuePair{}, &DecodeError{Kind: ErrKeyValuePairLengthExceeded}
	}
	data, err := r.ReadN(int(length))
	if err != nil {
		return KeyValuePair{}, err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return NewBytesPair(key, buf), nil
}

// KeyValuePairs is a set of parameters keyed by Key, framed on the
// wire by element count. Decode rejects duplicate keys.
type KeyValuePairs map[uint64]KeyValuePair

// NewKeyValuePairs returns an empty set.
func NewKeyValuePairs() KeyValuePairs {
	return make(KeyValuePairs)
}

// Set inserts or replaces a pair.
func (ps KeyValuePairs) Set(p KeyValuePair) {
	ps[p.Key] = p
}

// SetInt inserts or replaces an integer-valued pair.
func (ps KeyValuePairs) SetInt(key, v uint64) {
	ps[key] = NewIntPair(key, v)
}

// SetBytes inserts or replaces a byte-string-valued pair.
func (ps KeyValuePairs) SetBytes(key uint64, v []byte) {
	ps[key] = NewBytesPair(key, v)
}

// Has reports whether key is present.
func (ps KeyValuePairs) Has(key uint64) bool {
	_, ok := ps[key]
	return ok
}

// Get returns the pair for key, if present.
func (ps KeyValuePairs) Get(key uint64) (KeyValuePair, bool) {
	p, ok := ps[key]
	return p, ok
}

// Encode writes the varint count followed by each pair in map order.
func (ps KeyValuePairs) Encode(w *Writer) error {
	if err := w.WriteVarInt(uint64(len(ps))); err != nil {
		return err
	}
	for _, p := range ps {
		if err := p.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

// DecodeKeyValuePairs reads a count-framed parameter set, rejecting
// duplicate keys.
func DecodeKeyValuePairs(r *Reader) (KeyValuePairs, error) {
	count, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	ps := make(KeyValuePairs, count)
	for i := uint64(0); i < count; i++ {
		p, err := DecodeKeyValuePair(r)
		if err != nil {
			return nil, err
		}
		if ps.Has(p.Key) {
			return nil, &DecodeError{Kind: ErrDuplicateParameter}
		}
		ps.Set(p)
	}
	return ps, nil
}
