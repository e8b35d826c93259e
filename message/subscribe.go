package message

import "github.com/quic-moq/moqt/coding"

// Subscribe is sent by a subscriber to request a track, selecting a
// range via FilterType. AbsoluteStart and AbsoluteRange carry Start;
// only AbsoluteRange also carries EndGroup.
type Subscribe struct {
	ID             uint64
	TrackNamespace coding.TrackNamespace
	TrackName      coding.TupleField
	Priority       byte
	GroupOrder     GroupOrder
	Forward        bool
	Filter         FilterType
	Start          coding.Location // present iff Filter == FilterAbsoluteStart or FilterAbsoluteRange
	EndGroup       uint64          // present iff Filter == FilterAbsoluteRange
	Params         coding.KeyValuePairs
}

// Encode writes the request per the filter-dependent field set.
func (m Subscribe) Encode(w *coding.Writer) error {
	if err := w.WriteVarInt(m.ID); err != nil {
		return err
	}
	if err := m.TrackNamespace.Encode(w); err != nil {
		return err
	}
	if err := m.TrackName.Encode(w); err != nil {
		return err
	}
	if err := w.WriteByte(m.Priority); err != nil {
		return err
	}
	if err := m.GroupOrder.Encode(w); err != nil {
		return err
	}
	forward := byte(0)
	if m.Forward {
		forward = 1
	}
	if err := w.WriteByte(forward); err != nil {
		return err
	}
	if err := w.WriteVarInt(uint64(m.Filter)); err != nil {
		return err
	}
	switch m.Filter {
	case FilterAbsoluteStart:
		if err := m.Start.Encode(w); err != nil {
			return err
		}
	case FilterAbsoluteRange:
		if err := m.Start.Encode(w); err != nil {
			return err
		}
		if err := w.WriteVarInt(m.EndGroup); err != nil {
			return err
		}
	}
	params := m.Params
	if params == nil {
		params = coding.NewKeyValuePairs()
	}
	return params.Encode(w)
}

// DecodeSubscribe reads a Subscribe request.
func DecodeSubscribe(r *coding.Reader) (Subscribe, error) {
	var m Subscribe

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

	name, err := coding.DecodeTupleField(r)
	if err != nil {
		return m, err
	}
	m.TrackName = name

	priority, err := r.ReadByte()
	if err != nil {
		return m, err
	}
	m.Priority = priority

	order, err := DecodeGroupOrder(r)
	if err != nil {
		return m, err
	}
	m.GroupOrder = order

	forward, err := r.ReadByte()
	if err != nil {
		return m, err
	}
	m.Forward = forward != 0

	filter, err := DecodeFilterType(r)
	if err != nil {
		return m, err
	}
	m.Filter = filter

	switch filter {
	case FilterAbsoluteStart:
		start, err := coding.DecodeLocation(r)
		if err != nil {
			return m, err
		}
		m.Start = start
	case FilterAbsoluteRange:
		start, err := coding.DecodeLocation(r)
		if err != nil {
			return m, err
		}
		m.Start = start
		end, err := r.ReadVarInt()
		if err != nil {
			return m, err
		}
		m.EndGroup = end
	}

	params, err := coding.DecodeKeyValuePairs(r)
	if err != nil {
		return m, err
	}
	m.Params = params

	return m, nil
}

// SubscribeUpdate narrows an in-flight Subscribe's range. Currently
// decoded but not handled: the session layer logs it as NotImplemented,
// like the ReservedMessage tags, and sends no reply; kept distinct from Subscribe since its wire
// shape omits namespace/name (those are fixed for the request id).
type SubscribeUpdate struct {
	ID       uint64
	Start    coding.Location
	EndGroup uint64
	Priority byte
	Forward  bool
	Params   coding.KeyValuePairs
}

// Encode writes the update.
func (m SubscribeUpdate) Encode(w *coding.Writer) error {
	if err := w.WriteVarInt(m.ID); err != nil {
		return err
	}
	if err := m.Start.Encode(w); err != nil {
		return err
	}
	if err := w.WriteVarInt(m.EndGroup); err != nil {
		return err
	}
	if err := w.WriteByte(m.Priority); err != nil {
		return err
	}
	forward := byte(0)
	if m.Forward {
		forward = 1
	}
	if err := w.WriteByte(forward); err != nil {
		return err
	}
	params := m.Params
	if params == nil {
		params = coding.NewKeyValuePairs()
	}
	return params.Encode(w)
}

// DecodeSubscribeUpdate reads a SubscribeUpdate.
func DecodeSubscribeUpdate(r *coding.Reader) (SubscribeUpdate, error) {
	var m SubscribeUpdate

	id, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	m.ID = id

	start, err := coding.DecodeLocation(r)
	if err != nil {
		return m, err
	}
	m.Start = start

	end, err := r.ReadVarInt()
	if err != nil {
		return m, err
	}
	m.EndGroup = end

	priority, err := r.ReadByte()
	if err != nil {
		return m, err
	}
	m.Priority = priority

	forward, err := r.ReadByte()
	if err != nil {
		return m, err
	}
	m.Forward = forward != 0

	params, err := coding.DecodeKeyValuePairs(r)
	if err != nil {
		return m, err
	}
	m.Params = params

	return m, nil
}

// Unsubscribe terminates a Subscribe identified by ID.
type Unsubscribe struct {
	ID uint64
}

// Encode writes the request id.
func (m Unsubscribe) Encode(w *coding.Writer) error {
	return w.WriteVarInt(m.ID)
}

// DecodeUnsubscribe reads an Unsubscribe.
func DecodeUnsubscribe(r *coding.Reader) (Unsubscribe, error) {
	id, err := r.ReadVarInt()
	if err != nil {
		return Unsubscribe{}, err
	}
	return Unsubscribe{ID: id}, nil
}
