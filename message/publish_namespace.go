package message

import "github.com/quic-moq/moqt/coding"

// PublishNamespace is sent by a publisher to announce that it can
// serve some namespace. Named PublishNamespace (not Announce) per
// the post-rename draft identifiers.
type PublishNamespace struct {
	ID             uint64
	TrackNamespace coding.TrackNamespace
	Params         coding.KeyValuePairs
}

// Encode writes the announcement.
func (m PublishNamespace) Encode(w *coding.Writer) error {
	if err := w.WriteVarInt(m.ID); err != nil {
		return err
	}
	if err := m.TrackNamespace.Encode(w); err != nil {
		return err
	}
	params := m.Params
	if params == nil {
		params = coding.NewKeyValuePairs()
	}
	return params.Encode(w)
}

// DecodePublishNamespace reads a PublishNamespace.
func DecodePublishNamespace(r *coding.Reader) (PublishNamespace, error) {
	var m PublishNamespace

	id, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	m.ID = id

	ns, err := coding.DecodeTrackNamespace(r)
	if err != nil {
		return m, err
	}
	m.TrackNamespace = ns

	params, err := coding.DecodeKeyValuePairs(r)
	if err != nil {
		return m, err
	}
	m.Params = params

	return m, nil
}

// PublishNamespaceOk accepts a PublishNamespace by echoing its
// request id.
type PublishNamespaceOk struct {
	ID uint64
}

// Encode writes the acceptance.
func (m PublishNamespaceOk) Encode(w *coding.Writer) error {
	return w.WriteVarInt(m.ID)
}

// DecodePublishNamespaceOk reads a PublishNamespaceOk.
func DecodePublishNamespaceOk(r *coding.Reader) (PublishNamespaceOk, error) {
	id, err := r.ReadVarInt()
	if err != nil {
		return PublishNamespaceOk{}, err
	}
	return PublishNamespaceOk{ID: id}, nil
}

// PublishNamespaceError rejects a PublishNamespace.
type PublishNamespaceError struct {
	ID           uint64
	ErrorCode    uint64
	ReasonPhrase coding.ReasonPhrase
}

// Encode writes the rejection.
func (m PublishNamespaceError) Encode(w *coding.Writer) error {
	if err := w.WriteVarInt(m.ID); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.ErrorCode); err != nil {
		return err
	}
	return m.ReasonPhrase.Encode(w)
}

// DecodePublishNamespaceError reads a PublishNamespaceError.
func DecodePublishNamespaceError(r *coding.Reader) (PublishNamespaceError, error) {
	var m PublishNamespaceError

	id, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	m.ID = id

	code, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	m.ErrorCode = code

	reason, err := coding.DecodeReasonPhrase(r)
	if err != nil {
		return m, err
	}
	m.ReasonPhrase = reason

	return m, nil
}

// PublishNamespaceDone is sent by the publisher to terminate an
// announcement it previously made.
type PublishNamespaceDone struct {
	TrackNamespace coding.TrackNamespace
}

// Encode writes the termination.
func (m PublishNamespaceDone) Encode(w *coding.Writer) error {
	return m.TrackNamespace.Encode(w)
}

// DecodePublishNamespaceDone reads a PublishNamespaceDone.
func DecodePublishNamespaceDone(r *coding.Reader) (PublishNamespaceDone, error) {
	ns, err := coding.DecodeTrackNamespace(r)
	if err != nil {
		return PublishNamespaceDone{}, err
	}
	return PublishNamespaceDone{TrackNamespace: ns}, nil
}

// PublishNamespaceCancel is sent by the subscriber to terminate an
// announcement after it had already accepted it with
// PublishNamespaceOk.
type PublishNamespaceCancel struct {
	TrackNamespace coding.TrackNamespace
	ErrorCode      uint64
	ReasonPhrase   coding.ReasonPhrase
}

// Encode writes the cancellation.
func (m PublishNamespaceCancel) Encode(w *coding.Writer) error {
	if err := m.TrackNamespace.Encode(w); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.ErrorCode); err != nil {
		return err
	}
	return m.ReasonPhrase.Encode(w)
}

// DecodePublishNamespaceCancel reads a PublishNamespaceCancel.
func DecodePublishNamespaceCancel(r *coding.Reader) (PublishNamespaceCancel, error) {
	var m PublishNamespaceCancel

	ns, err := coding.DecodeTrackNamespace(r)
	if err != nil {
		return m, err
	}
	m.TrackNamespace = ns

	code, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	m.ErrorCode = code

	reason, err := coding.DecodeReasonPhrase(r)
	if err != nil {
		return m, err
	}
	m.ReasonPhrase = reason

	return m, nil
}
