package message

import "github.com/quic-moq/moqt/coding"

// GoAway asks the peer to migrate to a new session, optionally at a
// different URI.
type GoAway struct {
	URI coding.SessionURI
}

// Encode writes the redirect target.
func (m GoAway) Encode(w *coding.Writer) error {
	return m.URI.Encode(w)
}

// DecodeGoAway reads a GoAway.
func DecodeGoAway(r *coding.Reader) (GoAway, error) {
	uri, err := coding.DecodeSessionURI(r)
	if err != nil {
		return GoAway{}, err
	}
	return GoAway{URI: uri}, nil
}
