package data

import "github.com/quic-moq/moqt/coding"

// ExtensionHeaders carries the same KeyValuePair content as
// coding.KeyValuePairs but is framed on the wire by total byte length
// rather than element count, and tolerates duplicate keys during
// decode (last one wins).
type ExtensionHeaders []coding.KeyValuePair

// Encode writes the total encoded byte length of the headers followed
// by each pair.
func (h ExtensionHeaders) Encode(w *coding.Writer) error {
	inner := coding.NewWriter()
	for _, p := range h {
		if err := p.Encode(inner); err != nil {
			return err
		}
	}
	if err := w.WriteVarInt(uint64(inner.Len())); err != nil {
		return err
	}
	w.Write(inner.Bytes())
	return nil
}

// DecodeExtensionHeaders reads a byte-length-framed header list.
func DecodeExtensionHeaders(r *coding.Reader) (ExtensionHeaders, error) {
	length, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	body, err := r.ReadN(int(length))
	if err != nil {
		return nil, err
	}
	inner := coding.NewReader(body)
	var headers ExtensionHeaders
	for inner.Remaining() > 0 {
		p, err := coding.DecodeKeyValuePair(inner)
		if err != nil {
			return nil, err
		}
		headers = append(headers, p)
	}
	return headers, nil
}

// Get returns the last pair matching key, since duplicates are
// tolerated and later entries win.
func (h ExtensionHeaders) Get(key uint64) (coding.KeyValuePair, bool) {
	var found coding.KeyValuePair
	ok := false
	for _, p := range h {
		if p.Key == key {
			found = p
			ok = true
		}
	}
	return found, ok
}
