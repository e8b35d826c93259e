package serve

import (
	"context"
	"testing"
	"time"

	"github.com/quic-moq/moqt/data"
)

func TestSubgroupObjectWriteThenCloseMatchingSize(t *testing.T) {
	t.Parallel()

	obj := SubgroupObject{Size: 5, Status: data.ObjectStatusNormal}
	writer, reader := obj.Produce()

	if err := writer.Write([]byte{1, 2}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := writer.Close([]byte{3, 4, 5}); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ctx := context.Background()
	got, err := reader.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != string([]byte{1, 2, 3, 4, 5}) {
		t.Fatalf("ReadAll = %v, want [1 2 3 4 5]", got)
	}
}

func TestSubgroupObjectWriteBeyondDeclaredSizeRejected(t *testing.T) {
	t.Parallel()

	obj := SubgroupObject{Size: 2}
	writer, _ := obj.Produce()

	if err := writer.Write([]byte{1, 2, 3}); err != ErrSize {
		t.Fatalf("Write over size: err = %v, want ErrSize", err)
	}
}

func TestSubgroupObjectAbandonBeforeSizeMetClosesWithSize(t *testing.T) {
	t.Parallel()

	obj := SubgroupObject{Size: 4}
	writer, reader := obj.Produce()

	if err := writer.Write([]byte{1, 2, 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	writer.Abandon()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := reader.ReadAll(ctx); err != ErrSize {
		t.Fatalf("ReadAll after Abandon: err = %v, want ErrSize", err)
	}
}

func TestSubgroupsCreateDuplicateGroupRejected(t *testing.T) {
	t.Parallel()

	writer, _ := Subgroups{}.Produce()

	if _, err := writer.Append(1, 0, 0); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := writer.Append(1, 1, 0); err != ErrDuplicate {
		t.Fatalf("Append duplicate group: err = %v, want ErrDuplicate", err)
	}
}

func TestSubgroupsAppendOlderGroupIsDroppedNotError(t *testing.T) {
	t.Parallel()

	writer, _ := Subgroups{}.Produce()

	if _, err := writer.Append(5, 0, 0); err != nil {
		t.Fatalf("Append: %v", err)
	}
	olderWriter, err := writer.Append(2, 0, 0)
	if err != nil {
		t.Fatalf("Append older group returned error: %v, want nil", err)
	}
	if olderWriter == nil {
		t.Fatal("Append older group returned nil writer")
	}
}

func TestSubgroupsReaderObservesOnlyLatestGroupAdvance(t *testing.T) {
	t.Parallel()

	writer, reader := Subgroups{}.Produce()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := writer.Append(1, 0, 0); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := writer.Append(2, 0, 0); err != nil {
		t.Fatalf("Append: %v", err)
	}
	sg, err := reader.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if sg.Info.GroupID != 2 {
		t.Fatalf("GroupID = %d, want 2", sg.Info.GroupID)
	}
}

func TestSubgroupReaderCloneFanOutSameSequence(t *testing.T) {
	t.Parallel()

	sgWriter, sgReader := SubgroupInfo{}.Produce()
	clone := sgReader.Clone()
	defer clone.Release()

	for i := 0; i < 3; i++ {
		if _, err := sgWriter.Create(1, data.ObjectStatusNormal); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := sgWriter.Close(nil); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	readAllIDs := func(r *SubgroupReader) []uint64 {
		var ids []uint64
		for {
			obj, err := r.Next(ctx)
			if err != nil {
				t.Fatalf("Next: %v", err)
			}
			if obj == nil {
				return ids
			}
			ids = append(ids, obj.Info.ObjectID)
		}
	}

	got1 := readAllIDs(sgReader)
	got2 := readAllIDs(clone)

	if len(got1) != 3 || len(got2) != 3 {
		t.Fatalf("ids = %v / %v, want 3 each", got1, got2)
	}
	for i := range got1 {
		if got1[i] != got2[i] {
			t.Fatalf("clone diverged at index %d: %d vs %d", i, got1[i], got2[i])
		}
	}
}

func TestDatagramsReaderObservesWrittenOrder(t *testing.T) {
	t.Parallel()

	writer, reader := Datagrams{}.Produce()
	for i := uint64(0); i < 3; i++ {
		if err := writer.Write(Datagram{GroupID: 0, ObjectID: i, Payload: []byte{byte(i)}}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := writer.Close(nil); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ctx := context.Background()
	for i := uint64(0); i < 3; i++ {
		d, err := reader.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if d.ObjectID != i {
			t.Fatalf("ObjectID = %d, want %d", d.ObjectID, i)
		}
	}
	last, err := reader.Next(ctx)
	if err != nil || last != nil {
		t.Fatalf("Next after close = (%v, %v), want (nil, nil)", last, err)
	}
}
