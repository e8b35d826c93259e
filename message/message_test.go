package message

import (
	"testing"

	"github.com/quic-moq/moqt/coding"
)

func TestFilterTypeRoundTrip(t *testing.T) {
	t.Parallel()
	for _, f := range []FilterType{FilterNextGroupStart, FilterLargestObject, FilterAbsoluteStart, FilterAbsoluteRange} {
		w := coding.NewWriter()
		if err := f.Encode(w); err != nil {
			t.Fatalf("encode %v: %v", f, err)
		}
		got, err := DecodeFilterType(coding.NewReader(w.Bytes()))
		if err != nil {
			t.Fatalf("decode %v: %v", f, err)
		}
		if got != f {
			t.Errorf("got %v, want %v", got, f)
		}
	}
}

func TestFilterTypeRejectsUnknown(t *testing.T) {
	t.Parallel()
	w := coding.NewWriter()
	w.WriteVarInt(0x5)
	_, err := DecodeFilterType(coding.NewReader(w.Bytes()))
	de, ok := err.(*coding.DecodeError)
	if !ok || de.Kind != coding.ErrInvalidFilterType {
		t.Fatalf("expected ErrInvalidFilterType, got %v", err)
	}
}

func TestGroupOrderRoundTrip(t *testing.T) {
	t.Parallel()
	for _, o := range []GroupOrder{GroupOrderPublisher, GroupOrderAscending, GroupOrderDescending} {
		w := coding.NewWriter()
		if err := o.Encode(w); err != nil {
			t.Fatalf("encode %v: %v", o, err)
		}
		got, err := DecodeGroupOrder(coding.NewReader(w.Bytes()))
		if err != nil {
			t.Fatalf("decode %v: %v", o, err)
		}
		if got != o {
			t.Errorf("got %v, want %v", got, o)
		}
	}
}

func TestVersionsRoundTrip(t *testing.T) {
	t.Parallel()
	vs := Versions{1, 0xff000007, Draft14}
	w := coding.NewWriter()
	if err := vs.Encode(w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeVersions(coding.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 3 || got[2] != Draft14 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestNegotiateVersionPicksFirstOverlap(t *testing.T) {
	t.Parallel()
	client := Versions{0xff000007, Draft14, 1}
	server := Versions{1, Draft14}
	got, ok := NegotiateVersion(client, server)
	if !ok || got != Draft14 {
		t.Fatalf("expected Draft14, got %v ok=%v", got, ok)
	}
}

func TestNegotiateVersionNoOverlap(t *testing.T) {
	t.Parallel()
	_, ok := NegotiateVersion(Versions{1}, Versions{2})
	if ok {
		t.Fatal("expected no overlap")
	}
}

func TestClientServerSetupRoundTrip(t *testing.T) {
	t.Parallel()
	params := coding.NewKeyValuePairs()
	params.SetBytes(SetupParamPath, []byte("testpath"))
	client := ClientSetup{Versions: Versions{Draft14}, Params: params}

	w := coding.NewWriter()
	if err := client.Encode(w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeClientSetup(coding.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Versions) != 1 || got.Versions[0] != Draft14 {
		t.Fatalf("version mismatch: %+v", got.Versions)
	}
	p, ok := got.Params.Get(SetupParamPath)
	if !ok || string(p.Value.Bytes) != "testpath" {
		t.Fatalf("path param mismatch: %+v", p)
	}

	server := ServerSetup{Version: Draft14, Params: coding.NewKeyValuePairs()}
	sw := coding.NewWriter()
	if err := server.Encode(sw); err != nil {
		t.Fatalf("encode server: %v", err)
	}
	gotServer, err := DecodeServerSetup(coding.NewReader(sw.Bytes()))
	if err != nil {
		t.Fatalf("decode server: %v", err)
	}
	if gotServer.Version != Draft14 {
		t.Fatalf("version mismatch: %v", gotServer.Version)
	}
}

func TestClientSetupRejectsWrongType(t *testing.T) {
	t.Parallel()
	w := coding.NewWriter()
	w.WriteVarInt(0x99)
	w.WriteVarInt(0)
	_, err := DecodeClientSetup(coding.NewReader(w.Bytes()))
	de, ok := err.(*coding.DecodeError)
	if !ok || de.Kind != coding.ErrInvalidMessage {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

func namespace(parts ...string) coding.TrackNamespace {
	return coding.NewTrackNamespace(parts...)
}

func TestSubscribeRoundTripEachFilter(t *testing.T) {
	t.Parallel()
	base := Subscribe{
		ID:             7,
		TrackNamespace: namespace("live", "camera1"),
		TrackName:      coding.TupleField("video"),
		Priority:       10,
		GroupOrder:     GroupOrderAscending,
		Forward:        true,
		Params:         coding.NewKeyValuePairs(),
	}

	next := base
	next.Filter = FilterNextGroupStart
	roundTripSubscribe(t, next)

	largest := base
	largest.Filter = FilterLargestObject
	roundTripSubscribe(t, largest)

	start := base
	start.Filter = FilterAbsoluteStart
	start.Start = coding.Location{Group: 3, Object: 0}
	roundTripSubscribe(t, start)

	rng := base
	rng.Filter = FilterAbsoluteRange
	rng.Start = coding.Location{Group: 3, Object: 0}
	rng.EndGroup = 10
	roundTripSubscribe(t, rng)
}

func roundTripSubscribe(t *testing.T, s Subscribe) {
	t.Helper()
	w := coding.NewWriter()
	if err := s.Encode(w); err != nil {
		t.Fatalf("encode %v: %v", s.Filter, err)
	}
	got, err := DecodeSubscribe(coding.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode %v: %v", s.Filter, err)
	}
	if got.ID != s.ID || got.Filter != s.Filter || !got.TrackNamespace.Equal(s.TrackNamespace) {
		t.Fatalf("round trip mismatch for %v: %+v", s.Filter, got)
	}
	if s.Filter == FilterAbsoluteStart || s.Filter == FilterAbsoluteRange {
		if got.Start != s.Start {
			t.Fatalf("start mismatch for %v: got %+v want %+v", s.Filter, got.Start, s.Start)
		}
	}
	if s.Filter == FilterAbsoluteRange && got.EndGroup != s.EndGroup {
		t.Fatalf("end group mismatch: got %d want %d", got.EndGroup, s.EndGroup)
	}
}

func TestSubscribeOkRoundTripWithAndWithoutContent(t *testing.T) {
	t.Parallel()
	withContent := SubscribeOk{
		ID: 1, TrackAlias: 1, Expires: 0, GroupOrder: GroupOrderAscending,
		ContentExists: true, Latest: coding.Location{Group: 5, Object: 2},
		Params: coding.NewKeyValuePairs(),
	}
	w := coding.NewWriter()
	if err := withContent.Encode(w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeSubscribeOk(coding.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.ContentExists || got.Latest != withContent.Latest {
		t.Fatalf("mismatch: %+v", got)
	}

	noContent := SubscribeOk{ID: 2, TrackAlias: 2, GroupOrder: GroupOrderDescending, Params: coding.NewKeyValuePairs()}
	w2 := coding.NewWriter()
	if err := noContent.Encode(w2); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got2, err := DecodeSubscribeOk(coding.NewReader(w2.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got2.ContentExists {
		t.Fatal("expected ContentExists=false")
	}
}

func TestSubscribeErrorRoundTrip(t *testing.T) {
	t.Parallel()
	m := SubscribeError{ID: 3, ErrorCode: 0x4, ReasonPhrase: "not found"}
	w := coding.NewWriter()
	if err := m.Encode(w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeSubscribeError(coding.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != m {
		t.Fatalf("got %+v, want %+v", got, m)
	}
}

func TestSubscribeDoneRoundTrip(t *testing.T) {
	t.Parallel()
	m := SubscribeDone{ID: 4, StatusCode: 0, StreamCount: 3, ReasonPhrase: "closed"}
	w := coding.NewWriter()
	if err := m.Encode(w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeSubscribeDone(coding.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != m {
		t.Fatalf("got %+v, want %+v", got, m)
	}
}

func TestUnsubscribeRoundTrip(t *testing.T) {
	t.Parallel()
	m := Unsubscribe{ID: 9}
	w := coding.NewWriter()
	if err := m.Encode(w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeUnsubscribe(coding.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != m {
		t.Fatalf("got %+v, want %+v", got, m)
	}
}

func TestPublishNamespaceFamilyRoundTrip(t *testing.T) {
	t.Parallel()
	ns := namespace("test", "path", "to", "resource")

	pub := PublishNamespace{ID: 12345, TrackNamespace: ns, Params: coding.NewKeyValuePairs()}
	w := coding.NewWriter()
	if err := pub.Encode(w); err != nil {
		t.Fatalf("encode PublishNamespace: %v", err)
	}
	gotPub, err := DecodePublishNamespace(coding.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode PublishNamespace: %v", err)
	}
	if gotPub.ID != pub.ID || !gotPub.TrackNamespace.Equal(ns) {
		t.Fatalf("round trip mismatch: %+v", gotPub)
	}

	ok := PublishNamespaceOk{ID: 12345}
	ow := coding.NewWriter()
	if err := ok.Encode(ow); err != nil {
		t.Fatalf("encode Ok: %v", err)
	}
	gotOk, err := DecodePublishNamespaceOk(coding.NewReader(ow.Bytes()))
	if err != nil || gotOk != ok {
		t.Fatalf("Ok round trip mismatch: %+v err=%v", gotOk, err)
	}

	cancel := PublishNamespaceCancel{TrackNamespace: namespace("testpath", "video"), ErrorCode: 0x2, ReasonPhrase: "Timeout"}
	cw := coding.NewWriter()
	if err := cancel.Encode(cw); err != nil {
		t.Fatalf("encode Cancel: %v", err)
	}
	gotCancel, err := DecodePublishNamespaceCancel(coding.NewReader(cw.Bytes()))
	if err != nil {
		t.Fatalf("decode Cancel: %v", err)
	}
	if gotCancel.ErrorCode != cancel.ErrorCode || gotCancel.ReasonPhrase != cancel.ReasonPhrase {
		t.Fatalf("Cancel mismatch: %+v", gotCancel)
	}

	done := PublishNamespaceDone{TrackNamespace: ns}
	dw := coding.NewWriter()
	if err := done.Encode(dw); err != nil {
		t.Fatalf("encode Done: %v", err)
	}
	gotDone, err := DecodePublishNamespaceDone(coding.NewReader(dw.Bytes()))
	if err != nil || !gotDone.TrackNamespace.Equal(ns) {
		t.Fatalf("Done mismatch: %+v err=%v", gotDone, err)
	}
}

func TestGoAwayRoundTrip(t *testing.T) {
	t.Parallel()
	m := GoAway{URI: "https://relay.example/next"}
	w := coding.NewWriter()
	if err := m.Encode(w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeGoAway(coding.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != m {
		t.Fatalf("got %+v, want %+v", got, m)
	}
}

func TestMaxRequestIDAndRequestsBlockedRoundTrip(t *testing.T) {
	t.Parallel()
	m := MaxRequestID{RequestID: 100}
	w := coding.NewWriter()
	if err := m.Encode(w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeMaxRequestID(coding.NewReader(w.Bytes()))
	if err != nil || got != m {
		t.Fatalf("mismatch: %+v err=%v", got, err)
	}

	rb := RequestsBlocked{MaxRequestID: 100}
	rw := coding.NewWriter()
	if err := rb.Encode(rw); err != nil {
		t.Fatalf("encode: %v", err)
	}
	gotRb, err := DecodeRequestsBlocked(coding.NewReader(rw.Bytes()))
	if err != nil || gotRb != rb {
		t.Fatalf("mismatch: %+v err=%v", gotRb, err)
	}
}

func TestSubscribeNamespaceErrorAndFetchErrorRoundTrip(t *testing.T) {
	t.Parallel()

	sne := SubscribeNamespaceError{ID: 7, ErrorCode: 0x3, ReasonPhrase: "not implemented"}
	w := coding.NewWriter()
	if err := sne.Encode(w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	gotSNE, err := DecodeSubscribeNamespaceError(coding.NewReader(w.Bytes()))
	if err != nil || gotSNE != sne {
		t.Fatalf("mismatch: %+v err=%v", gotSNE, err)
	}

	fe := FetchError{ID: 9, ErrorCode: 0x3, ReasonPhrase: "not implemented"}
	fw := coding.NewWriter()
	if err := fe.Encode(fw); err != nil {
		t.Fatalf("encode: %v", err)
	}
	gotFE, err := DecodeFetchError(coding.NewReader(fw.Bytes()))
	if err != nil || gotFE != fe {
		t.Fatalf("mismatch: %+v err=%v", gotFE, err)
	}
}

func TestMessageEnvelopeRoundTrip(t *testing.T) {
	t.Parallel()
	m := Message{Type: TypeUnsubscribe, Unsubscribe: &Unsubscribe{ID: 42}}
	w := coding.NewWriter()
	if err := Encode(w, m); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(coding.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != TypeUnsubscribe || got.Unsubscribe == nil || got.Unsubscribe.ID != 42 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestMessageDecodeUnknownTypeErrors(t *testing.T) {
	t.Parallel()
	w := coding.NewWriter()
	w.WriteVarInt(0xff)
	w.WriteVarInt(0)
	_, err := Decode(coding.NewReader(w.Bytes()))
	de, ok := err.(*coding.DecodeError)
	if !ok || de.Kind != coding.ErrInvalidMessage {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestMessageDecodeReservedTagsDoNotDesync(t *testing.T) {
	t.Parallel()
	for _, typ := range []uint64{TypeTrackStatus, TypeSubscribeNamespace, TypeFetch, TypeFetchCancel} {
		w := coding.NewWriter()
		payload := []byte{0xaa, 0xbb, 0xcc}
		w.WriteVarInt(typ)
		w.WriteVarInt(uint64(len(payload)))
		w.Write(payload)

		got, err := Decode(coding.NewReader(w.Bytes()))
		if err != nil {
			t.Fatalf("decode reserved type %#x: %v", typ, err)
		}
		if got.Reserved == nil || got.Reserved.Type != typ {
			t.Fatalf("expected ReservedMessage for type %#x, got %+v", typ, got)
		}
	}
}
