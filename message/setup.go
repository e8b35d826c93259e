package message

import "github.com/quic-moq/moqt/coding"

// Version identifies one draft revision of the wire format.
type Version uint32

// Draft14 is the version this module speaks: draft-ietf-moq-transport-14.
const Draft14 Version = 0xff00000e

// Encode writes the version as a varint.
func (v Version) Encode(w *coding.Writer) error {
	return w.WriteVarInt(uint64(v))
}

// DecodeVersion reads a version, rejecting values that don't fit u32.
func DecodeVersion(r *coding.Reader) (Version, error) {
	v, err := r.ReadVarInt()
	if err != nil {
		return 0, err
	}
	if v > 0xffffffff {
		return 0, &coding.DecodeError{Kind: coding.ErrBoundsExceeded}
	}
	return Version(v), nil
}

// Versions is an ordered list of versions, used in CLIENT_SETUP to
// advertise every version the client is willing to speak.
type Versions []Version

// Encode writes the element count followed by each version.
func (vs Versions) Encode(w *coding.Writer) error {
	if err := w.WriteVarInt(uint64(len(vs))); err != nil {
		return err
	}
	for _, v := range vs {
		if err := v.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

// DecodeVersions reads a count-prefixed version list.
func DecodeVersions(r *coding.Reader) (Versions, error) {
	count, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	vs := make(Versions, 0, count)
	for i := uint64(0); i < count; i++ {
		v, err := DecodeVersion(r)
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}

// Contains reports whether v appears in vs.
func (vs Versions) Contains(v Version) bool {
	for _, x := range vs {
		if x == v {
			return true
		}
	}
	return false
}

// SetupParameter keys carried in CLIENT_SETUP/SERVER_SETUP params.
const (
	SetupParamPath                  = 0x1
	SetupParamMaxRequestID          = 0x2
	SetupParamMaxAuthTokenCacheSize = 0x4
	SetupParamAuthorizationToken    = 0x5
	SetupParamMOQTImplementation    = 0x7
)

// clientSetupType and serverSetupType are the control-stream-leading
// type tags for the handshake, sent outside the regular
// (type, length, payload) control message envelope since they open
// the stream rather than flow alongside other messages.
const (
	clientSetupType = 0x20
	serverSetupType = 0x21
)

// ClientSetup is the first message a client sends on the control
// stream: its supported versions in preferred order, plus setup
// parameters.
type ClientSetup struct {
	Versions Versions
	Params   coding.KeyValuePairs
}

// Encode writes the type tag, the payload's byte length as a varint
// (at most 0xffff), then the payload.
func (m ClientSetup) Encode(w *coding.Writer) error {
	if err := w.WriteVarInt(clientSetupType); err != nil {
		return err
	}
	inner := coding.NewWriter()
	if err := m.Versions.Encode(inner); err != nil {
		return err
	}
	params := m.Params
	if params == nil {
		params = coding.NewKeyValuePairs()
	}
	if err := params.Encode(inner); err != nil {
		return err
	}
	if inner.Len() > 0xffff {
		return &coding.EncodeError{Kind: coding.ErrMsgBounds}
	}
	if err := w.WriteVarInt(uint64(inner.Len())); err != nil {
		return err
	}
	w.Write(inner.Bytes())
	return nil
}

// DecodeClientSetup reads a CLIENT_SETUP message, including its
// leading type tag.
func DecodeClientSetup(r *coding.Reader) (ClientSetup, error) {
	typ, err := r.ReadVarInt()
	if err != nil {
		return ClientSetup{}, err
	}
	if typ != clientSetupType {
		return ClientSetup{}, &coding.DecodeError{Kind: coding.ErrInvalidMessage, Tag: typ}
	}
	if _, err := r.ReadVarInt(); err != nil { // declared byte length, advisory
		return ClientSetup{}, err
	}
	versions, err := DecodeVersions(r)
	if err != nil {
		return ClientSetup{}, err
	}
	params, err := coding.DecodeKeyValuePairs(r)
	if err != nil {
		return ClientSetup{}, err
	}
	return ClientSetup{Versions: versions, Params: params}, nil
}

// ServerSetup is the server's reply, selecting exactly one version
// from the client's list.
type ServerSetup struct {
	Version Version
	Params  coding.KeyValuePairs
}

// Encode writes the type tag, the payload's byte length as a varint
// (at most 0xffff), then the payload.
func (m ServerSetup) Encode(w *coding.Writer) error {
	if err := w.WriteVarInt(serverSetupType); err != nil {
		return err
	}
	inner := coding.NewWriter()
	if err := m.Version.Encode(inner); err != nil {
		return err
	}
	params := m.Params
	if params == nil {
		params = coding.NewKeyValuePairs()
	}
	if err := params.Encode(inner); err != nil {
		return err
	}
	if inner.Len() > 0xffff {
		return &coding.EncodeError{Kind: coding.ErrMsgBounds}
	}
	if err := w.WriteVarInt(uint64(inner.Len())); err != nil {
		return err
	}
	w.Write(inner.Bytes())
	return nil
}

// DecodeServerSetup reads a SERVER_SETUP message, including its
// leading type tag.
func DecodeServerSetup(r *coding.Reader) (ServerSetup, error) {
	typ, err := r.ReadVarInt()
	if err != nil {
		return ServerSetup{}, err
	}
	if typ != serverSetupType {
		return ServerSetup{}, &coding.DecodeError{Kind: coding.ErrInvalidMessage, Tag: typ}
	}
	if _, err := r.ReadVarInt(); err != nil {
		return ServerSetup{}, err
	}
	version, err := DecodeVersion(r)
	if err != nil {
		return ServerSetup{}, err
	}
	params, err := coding.DecodeKeyValuePairs(r)
	if err != nil {
		return ServerSetup{}, err
	}
	return ServerSetup{Version: version, Params: params}, nil
}

// NegotiateVersion picks the first client-preferred version the
// server also supports, per the handshake's "no overlap fails the
// session" rule.
func NegotiateVersion(client Versions, server Versions) (Version, bool) {
	for _, v := range client {
		if server.Contains(v) {
			return v, true
		}
	}
	return 0, false
}
