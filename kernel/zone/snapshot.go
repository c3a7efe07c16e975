package zone

import (
	"github.com/nmxmxh/region/kernel/memmap"
	"github.com/nmxmxh/region/kernel/region"
)

// Snapshot is a copy-on-write view of a Store's region. Opening one is an
// mmap(MAP_PRIVATE) call plus a copy of the in-process name index, not a
// record-by-record copy of the region's bytes. Pages the snapshot writes
// become private to it; pages it has not written are shared with the live
// mapping, so later writes to them through the live store are visible in
// the snapshot.
type Snapshot struct {
	store    *Store
	clone    *memmap.CloneProvider
	snapshot *Store
}

// Snapshot clones the store's backing file and opens an independent Store
// over the clone, suitable for serving reads (e.g. answering queries
// against a zone mid-reload) without holding the live store's lock.
func (s *Store) Snapshot() (*Snapshot, error) {
	fp, ok := s.provider.(*memmap.FileProvider)
	if !ok {
		return nil, ErrSnapshotNeedsFile
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	clone, err := memmap.Clone(fp)
	if err != nil {
		return nil, err
	}

	snapRegion, err := region.Open(clone.Bytes())
	if err != nil {
		_ = clone.Close()
		return nil, err
	}

	snapStore := NewStore(snapRegion, clone, s.log)
	for name, heads := range s.byName {
		snapStore.byName[name] = append([]region.Offset(nil), heads...)
	}

	return &Snapshot{store: s, clone: clone, snapshot: snapStore}, nil
}

// Store returns the snapshot's own, independently queryable Store.
func (sn *Snapshot) Store() *Store { return sn.snapshot }

// Commit copies the snapshot's current bytes back onto the live store's
// region, making any mutations made through the snapshot durable. The
// live store must not be concurrently mutated by another goroutine while
// committing.
func (sn *Snapshot) Commit() error {
	return sn.clone.CommitTo(sn.store.provider)
}

// Close releases the clone's mapping without affecting the live store.
func (sn *Snapshot) Close() error {
	return sn.clone.Close()
}
