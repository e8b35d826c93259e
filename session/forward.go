package session

import (
	"context"
	"io"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/data"
	"github.com/quic-moq/moqt/serve"
)

// forwardSubgroups pumps every subgroup (and its objects) a
// SubgroupsReader yields onto its own unidirectional QUIC stream,
// until the reader closes or ctx is cancelled.
func forwardSubgroups(ctx context.Context, t Transport, trackAlias uint64, reader *serve.SubgroupsReader) error {
	for {
		sg, err := reader.Next(ctx)
		if err != nil {
			return err
		}
		if sg == nil {
			return nil
		}
		go forwardSubgroup(ctx, t, trackAlias, sg)
	}
}

func forwardSubgroup(ctx context.Context, t Transport, trackAlias uint64, reader *serve.SubgroupReader) {
	stream, err := t.OpenUniStream(ctx)
	if err != nil {
		return
	}
	defer stream.Close()
	stream.SetPriority(int32(reader.Info.Priority))

	info := reader.Info
	subgroupID := info.SubgroupID
	header := data.StreamHeader{
		Type: data.StreamHeaderSubgroupID,
		Subgroup: &data.SubgroupHeader{
			Type:              data.StreamHeaderSubgroupID,
			TrackAlias:        trackAlias,
			GroupID:           info.GroupID,
			SubgroupID:        &subgroupID,
			PublisherPriority: info.Priority,
		},
	}
	w := coding.NewWriter()
	if err := header.Encode(w); err != nil {
		return
	}
	if _, err := stream.Write(w.Bytes()); err != nil {
		return
	}

	for {
		object, err := reader.Next(ctx)
		if err != nil || object == nil {
			return
		}
		if err := forwardObject(ctx, stream, object); err != nil {
			return
		}
	}
}

// forwardObject streams one object's chunks onto stream as they
// become available, instead of assembling the whole payload first:
// the header (object id and declared size, taken from object.Info)
// goes out as soon as it's known, then each chunk object yields is
// written directly to the wire.
func forwardObject(ctx context.Context, stream io.Writer, object *serve.SubgroupObjectReader) error {
	headerBuf := coding.NewWriter()
	if err := data.EncodeSubgroupObjectHeader(headerBuf, object.Info.ObjectID, nil, false, object.Info.Size, nil); err != nil {
		return err
	}
	if _, err := stream.Write(headerBuf.Bytes()); err != nil {
		return err
	}

	if object.Info.Size == 0 {
		return nil
	}
	for {
		chunk, err := object.Read(ctx)
		if err != nil {
			return err
		}
		if chunk == nil {
			return nil
		}
		if _, err := stream.Write(chunk); err != nil {
			return err
		}
	}
}

// forwardDatagrams sends every object a DatagramsReader yields as its
// own unreliable QUIC datagram.
func forwardDatagrams(ctx context.Context, t Transport, trackAlias uint64, reader *serve.DatagramsReader) error {
	for {
		object, err := reader.Next(ctx)
		if err != nil {
			return err
		}
		if object == nil {
			return nil
		}
		objectID := object.ObjectID
		dgram := data.Datagram{
			Type:              data.DatagramObjectIDPayload,
			TrackAlias:        trackAlias,
			GroupID:           object.GroupID,
			ObjectID:          &objectID,
			PublisherPriority: object.Priority,
			Payload:           object.Payload,
		}
		if object.Status != data.ObjectStatusNormal {
			status := object.Status
			dgram.Type = data.DatagramObjectIDStatus
			dgram.Status = &status
			dgram.Payload = nil
		}
		buf := coding.NewWriter()
		if err := dgram.Encode(buf); err != nil {
			continue
		}
		if err := t.SendDatagram(buf.Bytes()); err != nil {
			return err
		}
	}
}

// forwardStream pumps a legacy single-stream track's objects onto one
// unidirectional QUIC stream for the life of the subscription.
func forwardStream(ctx context.Context, t Transport, trackAlias uint64, reader *serve.StreamReader) error {
	stream, err := t.OpenUniStream(ctx)
	if err != nil {
		return err
	}
	defer stream.Close()

	header := data.StreamHeader{
		Type: data.StreamHeaderSubgroupZeroID,
		Subgroup: &data.SubgroupHeader{
			Type:              data.StreamHeaderSubgroupZeroID,
			TrackAlias:        trackAlias,
			GroupID:           0,
			PublisherPriority: reader.Priority,
		},
	}
	w := coding.NewWriter()
	if err := header.Encode(w); err != nil {
		return err
	}
	if _, err := stream.Write(w.Bytes()); err != nil {
		return err
	}

	for {
		object, err := reader.Next(ctx)
		if err != nil {
			return err
		}
		if object == nil {
			return nil
		}
		rec := data.SubgroupObjectRecord{ObjectID: object.ObjectID, Payload: object.Payload}
		buf := coding.NewWriter()
		if err := data.EncodeSubgroupObject(buf, rec, false); err != nil {
			return err
		}
		if _, err := stream.Write(buf.Bytes()); err != nil {
			return err
		}
	}
}
