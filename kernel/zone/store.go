// Package zone stores a DNS zone's resource records inside a region, so
// the whole zone can be snapshotted with a single copy-on-write mmap
// clone instead of a record-by-record copy.
package zone

import (
	"errors"
	"strings"
	"sync"

	"github.com/miekg/dns"
	"go.uber.org/zap"

	"github.com/nmxmxh/region/kernel/memmap"
	"github.com/nmxmxh/region/kernel/region"
)

var (
	ErrOutOfSpace        = errors.New("zone: region out of space")
	ErrSnapshotNeedsFile = errors.New("zone: snapshot requires a file-backed store")
	ErrUnparsableRecord  = errors.New("zone: stored record failed to parse")
)

// Store indexes a region's records by owner name in an ordinary Go map.
// The index itself is not part of the region: only the serialized
// records are, so a Commit after a Snapshot only makes the committed
// region's bytes visible again — the live Store's index is unaffected
// unless the caller reconstructs it from the committed records.
type Store struct {
	mu       sync.RWMutex
	region   *region.Region
	provider memmap.Provider
	log      *zap.Logger
	byName   map[string][]region.Offset
}

// NewStore wraps an already-initialized region for record storage.
func NewStore(r *region.Region, provider memmap.Provider, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		region:   r,
		provider: provider,
		log:      log,
		byName:   make(map[string][]region.Offset),
	}
}

// Put serializes rr in zone-file text form and stores it in the region
// under its owner name.
func (s *Store) Put(rr dns.RR) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	head, err := writeChunked(s.region, []byte(rr.String()))
	if err != nil {
		return err
	}

	name := strings.ToLower(rr.Header().Name)
	s.byName[name] = append(s.byName[name], head)
	return nil
}

// Lookup returns every record owned by name, optionally filtered to a
// single DNS type (use dns.TypeANY to skip filtering).
func (s *Store) Lookup(name string, qtype uint16) ([]dns.RR, error) {
	s.mu.RLock()
	heads := append([]region.Offset(nil), s.byName[strings.ToLower(name)]...)
	s.mu.RUnlock()

	var out []dns.RR
	for _, head := range heads {
		rr, err := s.parse(head)
		if err != nil {
			s.log.Warn("zone: skipping unparsable record", zap.String("name", name), zap.Error(err))
			continue
		}
		if qtype == dns.TypeANY || rr.Header().Rrtype == qtype {
			out = append(out, rr)
		}
	}
	return out, nil
}

// Delete frees every record owned by name and drops it from the index.
func (s *Store) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(name)
	for _, head := range s.byName[key] {
		freeChunked(s.region, head)
	}
	delete(s.byName, key)
}

// Len returns the number of owner names currently indexed.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byName)
}

func (s *Store) parse(head region.Offset) (dns.RR, error) {
	raw := readChunked(s.region, head)
	text := strings.TrimRight(string(raw), "\x00")
	rr, err := dns.NewRR(text)
	if err != nil {
		return nil, err
	}
	if rr == nil {
		return nil, ErrUnparsableRecord
	}
	return rr, nil
}

// Stats exposes the underlying region's allocator statistics, for
// exporting as metrics alongside zone-level counters.
func (s *Store) Stats() region.Stats {
	return s.region.Stats()
}
