package autoid

import (
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// IDAllocator hands out int64 IDs of the form space<<32 + seq. IDs from
// allocators with distinct spaces never collide as long as fewer than 2^32
// IDs are allocated per space. Allocation is lock-free.
type IDAllocator struct {
	space int64
	seq   atomic.Int64
}

func NewIDAllocator(space int64) *IDAllocator {
	return &IDAllocator{
		space: space << 32,
	}
}

func (a *IDAllocator) AllocID() int64 {
	return a.space + a.seq.Inc()
}

// Space extracts the space tag AllocID folded into id.
func Space(id int64) int64 {
	return id >> 32
}

// Seq extracts the per-space sequence number AllocID folded into id.
func Seq(id int64) int64 {
	return id & 0xffffffff
}

type UUIDAllocator struct{}

func NewUUIDAllocator() *UUIDAllocator {
	return new(UUIDAllocator)
}

func (a *UUIDAllocator) AllocID() string {
	return uuid.New().String()
}
