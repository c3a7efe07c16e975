package zone

import "github.com/nmxmxh/region/kernel/region"

// The region's small-object allocator tops out at 256 bytes (spec), well
// under most serialized DNS records (a DNSKEY or a multi-string TXT can
// run to several hundred bytes). Records are therefore stored as a chain
// of fixed-size chunks: the first 4 bytes of every chunk hold the offset
// of the next one (0 terminates), mirroring the intrusive offset-linked
// lists the allocator itself is built from.
const (
	chunkHeaderSize = 4
	chunkSize       = 256
	chunkPayload    = chunkSize - chunkHeaderSize
)

func chunkNext(r *region.Region, off region.Offset) region.Offset {
	var b [chunkHeaderSize]byte
	_ = r.ReadAt(off, b[:])
	return region.Offset(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}

func setChunkNext(r *region.Region, off, next region.Offset) {
	v := uint32(next)
	b := [chunkHeaderSize]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	_ = r.WriteAt(off, b[:])
}

// writeChunked copies data into a freshly allocated chain of chunks and
// returns the offset of the first one.
func writeChunked(r *region.Region, data []byte) (region.Offset, error) {
	if len(data) == 0 {
		return region.NullOffset, nil
	}

	var head, tail region.Offset
	for len(data) > 0 {
		n := len(data)
		if n > chunkPayload {
			n = chunkPayload
		}

		off := r.Allocate(chunkSize)
		if off == region.NullOffset {
			if head != region.NullOffset {
				freeChunked(r, head)
			}
			return region.NullOffset, ErrOutOfSpace
		}

		_ = r.WriteAt(off+chunkHeaderSize, data[:n])
		setChunkNext(r, off, region.NullOffset)

		if head == region.NullOffset {
			head = off
		} else {
			setChunkNext(r, tail, off)
		}
		tail = off
		data = data[n:]
	}
	return head, nil
}

// readChunked reassembles the bytes written by writeChunked. Chunks carry
// no explicit length, so the caller is expected to trim trailing NUL
// padding itself (records here are always text, so trimming at the first
// zero byte is sufficient).
func readChunked(r *region.Region, head region.Offset) []byte {
	var out []byte
	buf := make([]byte, chunkPayload)
	for cur := head; cur != region.NullOffset; cur = chunkNext(r, cur) {
		_ = r.ReadAt(cur+chunkHeaderSize, buf)
		out = append(out, buf...)
	}
	return out
}

func freeChunked(r *region.Region, head region.Offset) {
	for cur := head; cur != region.NullOffset; {
		next := chunkNext(r, cur)
		r.Free(cur)
		cur = next
	}
}
