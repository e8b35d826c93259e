package session

import (
	"io"

	"github.com/quic-moq/moqt/coding"
	"github.com/quic-moq/moqt/data"
	"github.com/quic-moq/moqt/serve"
)

// decodeIncremental retries decode against buf, pulling more bytes
// from r as needed, until decode succeeds or fails terminally. On
// success it returns the bytes left over after the decoded value, for
// the next call. Mirrors controlReader.fill's incremental-retry
// pattern (reader.go) for the data plane's unidirectional streams,
// so a subgroup object straddling two QUIC reads still decodes
// without buffering the whole stream first.
func decodeIncremental[T any](r io.Reader, buf []byte, decode func(*coding.Reader) (T, error)) (T, []byte, error) {
	for {
		cur := coding.NewReader(buf)
		v, err := decode(cur)
		if err == nil {
			return v, buf[cur.Pos():], nil
		}
		if !coding.IsMore(err) {
			var zero T
			return zero, nil, err
		}
		chunk := make([]byte, 4096)
		n, rerr := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if rerr != nil {
			var zero T
			if rerr == io.EOF {
				return zero, nil, err // pending decode error, e.g. More(n)
			}
			return zero, nil, rerr
		}
	}
}

// recvUniStream decodes one incoming unidirectional stream as a
// subgroup (fetch streams aren't handled; see data.StreamHeaderFetch),
// writing each object into the local track as soon as it decodes
// rather than buffering the whole stream first.
func (s *Subscriber) recvUniStream(r io.Reader) error {
	buf := make([]byte, 0, 4096)

	header, buf, err := decodeIncremental(r, buf, data.DecodeStreamHeader)
	if err != nil {
		de, ok := err.(*coding.DecodeError)
		if !ok {
			return Wrap(CodeInternal, "read stream", err)
		}
		return FromDecodeError(de)
	}
	if header.Fetch != nil {
		return nil // Fetch streams are wire-defined but not consumed
	}

	writer := s.subgroupsWriterFor(header.Subgroup.TrackAlias)
	if writer == nil {
		return nil
	}

	subgroupID := header.Subgroup.EffectiveSubgroupID(0)
	sg, err := writer.Append(header.Subgroup.GroupID, subgroupID, header.Subgroup.PublisherPriority)
	if err != nil {
		return err
	}
	defer sg.Close(nil)

	hasExt := header.Subgroup.Type.HasExtensionHeaders()
	decodeObject := func(cur *coding.Reader) (data.SubgroupObjectRecord, error) {
		return data.DecodeSubgroupObject(cur, hasExt)
	}
	for {
		var rec data.SubgroupObjectRecord
		rec, buf, err = decodeIncremental(r, buf, decodeObject)
		if err != nil {
			if coding.IsMore(err) {
				return nil
			}
			de, ok := err.(*coding.DecodeError)
			if !ok {
				return Wrap(CodeInternal, "read stream", err)
			}
			return FromDecodeError(de)
		}
		if rec.Status != nil {
			continue
		}
		if err := sg.Write(rec.Payload); err != nil {
			return err
		}
	}
}

// recvDatagram decodes one incoming QUIC datagram and appends its
// object to whichever local track the session subscribed under the
// datagram's track_alias.
func (s *Subscriber) recvDatagram(payload []byte) error {
	cur := coding.NewReader(payload)
	dgram, err := data.DecodeDatagram(cur)
	if err != nil {
		return FromDecodeError(err.(*coding.DecodeError))
	}

	writer := s.datagramsWriterFor(dgram.TrackAlias)
	if writer == nil {
		return nil
	}
	if dgram.Status != nil {
		return nil
	}

	objectID := uint64(0)
	if dgram.ObjectID != nil {
		objectID = *dgram.ObjectID
	}
	return writer.Write(serve.Datagram{
		GroupID:  dgram.GroupID,
		ObjectID: objectID,
		Priority: dgram.PublisherPriority,
		Payload:  dgram.Payload,
	})
}

func (s *Subscriber) subgroupsWriterFor(trackAlias uint64) *serve.SubgroupsWriter {
	entry := s.entryFor(trackAlias)
	if entry == nil {
		return nil
	}
	return entry.getSubgroupsWriter()
}

func (s *Subscriber) datagramsWriterFor(trackAlias uint64) *serve.DatagramsWriter {
	entry := s.entryFor(trackAlias)
	if entry == nil {
		return nil
	}
	return entry.getDatagramsWriter()
}

func (s *Subscriber) entryFor(trackAlias uint64) *subscribeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribes[trackAlias]
}
