package encoding

import (
	"encoding"
	"errors"
	"testing"
)

var (
	_ encoding.TextMarshaler   = (*Snapshot)(nil)
	_ encoding.TextUnmarshaler = (*Snapshot)(nil)
)

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	want := &Snapshot{Records: []Record{
		{Addr: 0, Kind: KindFlash, Data: []byte{0x0c, 0x00, 0xff, 0xff}},
		{Addr: 0x60, Kind: KindSRAM, Data: []byte{0x01, 0x02, 0x03}},
		{Addr: 0, Kind: KindEEPROM, Data: []byte{0xff}},
		{Addr: 0, Kind: KindRegs, Data: make([]byte, 39)},
	}}

	text, err := want.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	got := &Snapshot{}
	if err := got.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}

	if len(got.Records) != len(want.Records) {
		t.Fatalf("len(Records) = %d, want %d", len(got.Records), len(want.Records))
	}

	for i := range want.Records {
		w, g := want.Records[i], got.Records[i]

		if w.Addr != g.Addr || w.Kind != g.Kind || string(w.Data) != string(g.Data) {
			t.Errorf("record %d = %+v, want %+v", i, g, w)
		}
	}
}

func TestSnapshotUnmarshalMissingEOF(t *testing.T) {
	t.Parallel()

	got := &Snapshot{}

	// A well-formed record (len=0, addr=0, kind=3, checksum=fd) with no terminating EOF record.
	err := got.UnmarshalText([]byte(":00000003fd\n"))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("err = %v, want ErrDecode", err)
	}
}

func TestSnapshotUnmarshalBadChecksum(t *testing.T) {
	t.Parallel()

	got := &Snapshot{}

	// Same record as above but with a deliberately wrong checksum byte.
	err := got.UnmarshalText([]byte(":00000003aa\n"))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("err = %v, want ErrDecode", err)
	}
}

func TestSnapshotUnmarshalMalformedLine(t *testing.T) {
	t.Parallel()

	got := &Snapshot{}

	if err := got.UnmarshalText([]byte("u wot mate")); !errors.Is(err, ErrDecode) {
		t.Errorf("err = %v, want ErrDecode", err)
	}
}
