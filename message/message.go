// Package message implements MoQ Transport's control-plane messages:
// typed records exchanged over the bidirectional control stream, each
// carrying its own request id where applicable, enveloped as
// (VarInt type, VarInt byte_length, payload).
package message

import "github.com/quic-moq/moqt/coding"

// Control message type tags. Subscriber-originated and
// publisher-originated are both listed here since routing by origin
// is the session layer's job, not the codec's.
const (
	TypeSubscribeUpdate         = 0x2
	TypeSubscribe               = 0x3
	TypeSubscribeOk             = 0x4
	TypeSubscribeError          = 0x5
	TypePublishNamespace        = 0x6
	TypePublishNamespaceOk      = 0x7
	TypePublishNamespaceError   = 0x8
	TypePublishNamespaceDone    = 0x9
	TypeUnsubscribe             = 0xa
	TypeSubscribeDone           = 0xb
	TypePublishNamespaceCancel  = 0xc
	TypeTrackStatus             = 0xe
	TypeGoAway                  = 0x10
	TypeSubscribeNamespace      = 0x11
	TypeSubscribeNamespaceOk    = 0x12
	TypeSubscribeNamespaceError = 0x13
	TypeUnsubscribeNamespace    = 0x14
	TypeMaxRequestID            = 0x15
	TypeFetch                   = 0x16
	TypeFetchCancel             = 0x17
	TypeFetchOk                 = 0x18
	TypeFetchError              = 0x19
	TypeRequestsBlocked         = 0x1a
)

// Message is the tagged union of every control message this module
// decodes. Exactly one field is non-nil, selected by Type.
type Message struct {
	Type uint64

	SubscribeUpdate         *SubscribeUpdate
	Subscribe               *Subscribe
	SubscribeOk             *SubscribeOk
	SubscribeError          *SubscribeError
	PublishNamespace        *PublishNamespace
	PublishNamespaceOk      *PublishNamespaceOk
	PublishNamespaceError   *PublishNamespaceError
	PublishNamespaceDone    *PublishNamespaceDone
	PublishNamespaceCancel  *PublishNamespaceCancel
	Unsubscribe             *Unsubscribe
	SubscribeDone           *SubscribeDone
	GoAway                  *GoAway
	MaxRequestID            *MaxRequestID
	RequestsBlocked         *RequestsBlocked
	SubscribeNamespaceError *SubscribeNamespaceError
	FetchError              *FetchError
	Reserved                *ReservedMessage
}

// Encode writes the (type, length, payload) envelope, delegating
// payload encoding to whichever field is set.
func Encode(w *coding.Writer, m Message) error {
	inner := coding.NewWriter()
	var err error
	switch m.Type {
	case TypeSubscribeUpdate:
		err = m.SubscribeUpdate.Encode(inner)
	case TypeSubscribe:
		err = m.Subscribe.Encode(inner)
	case TypeSubscribeOk:
		err = m.SubscribeOk.Encode(inner)
	case TypeSubscribeError:
		err = m.SubscribeError.Encode(inner)
	case TypePublishNamespace:
		err = m.PublishNamespace.Encode(inner)
	case TypePublishNamespaceOk:
		err = m.PublishNamespaceOk.Encode(inner)
	case TypePublishNamespaceError:
		err = m.PublishNamespaceError.Encode(inner)
	case TypePublishNamespaceDone:
		err = m.PublishNamespaceDone.Encode(inner)
	case TypePublishNamespaceCancel:
		err = m.PublishNamespaceCancel.Encode(inner)
	case TypeUnsubscribe:
		err = m.Unsubscribe.Encode(inner)
	case TypeSubscribeDone:
		err = m.SubscribeDone.Encode(inner)
	case TypeGoAway:
		err = m.GoAway.Encode(inner)
	case TypeMaxRequestID:
		err = m.MaxRequestID.Encode(inner)
	case TypeRequestsBlocked:
		err = m.RequestsBlocked.Encode(inner)
	case TypeSubscribeNamespaceError:
		err = m.SubscribeNamespaceError.Encode(inner)
	case TypeFetchError:
		err = m.FetchError.Encode(inner)
	default:
		err = m.Reserved.Encode(inner)
	}
	if err != nil {
		return err
	}
	if err := w.WriteVarInt(m.Type); err != nil {
		return err
	}
	if err := w.WriteVarInt(uint64(inner.Len())); err != nil {
		return err
	}
	w.Write(inner.Bytes())
	return nil
}

// Decode reads the (type, length, payload) envelope and dispatches to
// the matching payload decoder. Tags this module doesn't implement a
// handler for are still decoded, into a ReservedMessage holding the
// raw payload bytes, so the session layer can reply NotImplemented
// without losing framing sync on the stream.
func Decode(r *coding.Reader) (Message, error) {
	typ, err := r.ReadVarInt()
	if err != nil {
		return Message{}, err
	}
	length, err := r.ReadVarInt()
	if err != nil {
		return Message{}, err
	}
	body, err := r.ReadN(int(length))
	if err != nil {
		return Message{}, err
	}
	inner := coding.NewReader(body)

	m := Message{Type: typ}
	switch typ {
	case TypeSubscribeUpdate:
		v, err := DecodeSubscribeUpdate(inner)
		if err != nil {
			return Message{}, err
		}
		m.SubscribeUpdate = &v
	case TypeSubscribe:
		v, err := DecodeSubscribe(inner)
		if err != nil {
			return Message{}, err
		}
		m.Subscribe = &v
	case TypeSubscribeOk:
		v, err := DecodeSubscribeOk(inner)
		if err != nil {
			return Message{}, err
		}
		m.SubscribeOk = &v
	case TypeSubscribeError:
		v, err := DecodeSubscribeError(inner)
		if err != nil {
			return Message{}, err
		}
		m.SubscribeError = &v
	case TypePublishNamespace:
		v, err := DecodePublishNamespace(inner)
		if err != nil {
			return Message{}, err
		}
		m.PublishNamespace = &v
	case TypePublishNamespaceOk:
		v, err := DecodePublishNamespaceOk(inner)
		if err != nil {
			return Message{}, err
		}
		m.PublishNamespaceOk = &v
	case TypePublishNamespaceError:
		v, err := DecodePublishNamespaceError(inner)
		if err != nil {
			return Message{}, err
		}
		m.PublishNamespaceError = &v
	case TypePublishNamespaceDone:
		v, err := DecodePublishNamespaceDone(inner)
		if err != nil {
			return Message{}, err
		}
		m.PublishNamespaceDone = &v
	case TypePublishNamespaceCancel:
		v, err := DecodePublishNamespaceCancel(inner)
		if err != nil {
			return Message{}, err
		}
		m.PublishNamespaceCancel = &v
	case TypeUnsubscribe:
		v, err := DecodeUnsubscribe(inner)
		if err != nil {
			return Message{}, err
		}
		m.Unsubscribe = &v
	case TypeSubscribeDone:
		v, err := DecodeSubscribeDone(inner)
		if err != nil {
			return Message{}, err
		}
		m.SubscribeDone = &v
	case TypeGoAway:
		v, err := DecodeGoAway(inner)
		if err != nil {
			return Message{}, err
		}
		m.GoAway = &v
	case TypeMaxRequestID:
		v, err := DecodeMaxRequestID(inner)
		if err != nil {
			return Message{}, err
		}
		m.MaxRequestID = &v
	case TypeRequestsBlocked:
		v, err := DecodeRequestsBlocked(inner)
		if err != nil {
			return Message{}, err
		}
		m.RequestsBlocked = &v
	case TypeSubscribeNamespaceError:
		v, err := DecodeSubscribeNamespaceError(inner)
		if err != nil {
			return Message{}, err
		}
		m.SubscribeNamespaceError = &v
	case TypeFetchError:
		v, err := DecodeFetchError(inner)
		if err != nil {
			return Message{}, err
		}
		m.FetchError = &v
	case TypeTrackStatus, TypeSubscribeNamespace, TypeSubscribeNamespaceOk,
		TypeUnsubscribeNamespace, TypeFetch, TypeFetchCancel, TypeFetchOk:
		m.Reserved = &ReservedMessage{Type: typ, Payload: append([]byte(nil), body...)}
	default:
		return Message{}, &coding.DecodeError{Kind: coding.ErrInvalidMessage, Tag: typ}
	}
	return m, nil
}
