package udp

import (
	"encoding/binary"
	"testing"
	"time"
)

func buildLeaseFile(writtenAt uint64, records [][5]uint32) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, writtenAt)

	for _, r := range records {
		rec := make([]byte, leaseRecordSize)
		binary.BigEndian.PutUint32(rec[0:4], r[0])
		rec[4] = byte(r[1])
		rec[5] = byte(r[2])
		rec[6] = byte(r[3])
		rec[7] = byte(r[4])
		buf = append(buf, rec...)
	}
	return buf
}

func TestParseLeaseFile(t *testing.T) {
	now := time.Unix(1000, 0)
	writtenAt := uint64(900)

	data := buildLeaseFile(writtenAt, [][5]uint32{
		{200, 192, 168, 1, 10}, // expires at 1100, alive
		{50, 192, 168, 1, 11},  // expires at 950, dead
	})

	alive := parseLeaseFile(data, now)
	if len(alive) != 1 {
		t.Fatalf("expected 1 alive lease, got %d", len(alive))
	}
	if alive[0].String() != "192.168.1.10" {
		t.Errorf("unexpected alive IP: %s", alive[0])
	}
}

func TestParseLeaseFileTooShort(t *testing.T) {
	if got := parseLeaseFile([]byte{1, 2, 3}, time.Now()); got != nil {
		t.Errorf("expected nil for truncated lease file, got %v", got)
	}
}
