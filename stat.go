package foundation

import (
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/s2"
)

// AllocatorStat is a value copy of an AllocatorInfo for diagnostics tooling.
type AllocatorStat struct {
	Name           string             `json:"name"`
	Kind           string             `json:"kind"`
	BaseAddress    uint64             `json:"base_address"`
	PageSize       uint64             `json:"page_size"`
	Granularity    uint64             `json:"granularity"`
	BytesReserved  uint64             `json:"bytes_reserved"`
	BytesCommitted uint64             `json:"bytes_committed"`
	BytesAllocated uint64             `json:"bytes_allocated"`
	PagesReserved  uint64             `json:"pages_reserved"`
	PagesCommitted uint64             `json:"pages_committed"`
	NumAllocs      uint64             `json:"num_allocs"`
	AllocationData []AllocationRecord `json:"allocation_data"`
}

// UsedRate returns allocated / reserved in percent.
func (s AllocatorStat) UsedRate() float64 {
	if s.BytesReserved == 0 {
		return 0
	}
	return float64(s.BytesAllocated) / float64(s.BytesReserved) * 100
}

// CommitRate returns committed / reserved in percent.
func (s AllocatorStat) CommitRate() float64 {
	if s.BytesReserved == 0 {
		return 0
	}
	return float64(s.BytesCommitted) / float64(s.BytesReserved) * 100
}

// EncodeSnapshot marshals stats to JSON and compresses it with s2.
func EncodeSnapshot(stats []AllocatorStat) ([]byte, error) {
	src, err := sonic.Marshal(stats)
	if err != nil {
		return nil, errors.Wrap(err, "marshal snapshot")
	}
	return s2.Encode(nil, src), nil
}

// DecodeSnapshot reverses EncodeSnapshot.
func DecodeSnapshot(buf []byte) ([]AllocatorStat, error) {
	src, err := s2.Decode(nil, buf)
	if err != nil {
		return nil, errors.Wrap(err, "decompress snapshot")
	}
	var stats []AllocatorStat
	if err := sonic.Unmarshal(src, &stats); err != nil {
		return nil, errors.Wrap(err, "unmarshal snapshot")
	}
	return stats, nil
}
