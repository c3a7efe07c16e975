package zone

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"

	"github.com/nmxmxh/region/kernel/memmap"
	"github.com/nmxmxh/region/kernel/region"
)

func newTestStore(t *testing.T, pages int) (*Store, memmap.Provider) {
	t.Helper()
	p, err := memmap.NewMemoryProvider(uint32(pages * region.PageSize))
	require.NoError(t, err)
	r, err := region.Init(p.Bytes())
	require.NoError(t, err)
	return NewStore(r, p, nil), p
}

func mustRR(t *testing.T, text string) dns.RR {
	t.Helper()
	rr, err := dns.NewRR(text)
	require.NoError(t, err)
	return rr
}

func TestStorePutAndLookup(t *testing.T) {
	s, _ := newTestStore(t, 32)

	rr := mustRR(t, "example.com. 300 IN A 192.0.2.1")
	require.NoError(t, s.Put(rr))

	found, err := s.Lookup("example.com.", dns.TypeA)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "example.com.", found[0].Header().Name)
}

func TestStoreLookupFiltersByType(t *testing.T) {
	s, _ := newTestStore(t, 32)

	require.NoError(t, s.Put(mustRR(t, "example.com. 300 IN A 192.0.2.1")))
	require.NoError(t, s.Put(mustRR(t, "example.com. 300 IN AAAA ::1")))

	found, err := s.Lookup("example.com.", dns.TypeAAAA)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, dns.TypeAAAA, found[0].Header().Rrtype)
}

func TestStoreLookupIsCaseInsensitive(t *testing.T) {
	s, _ := newTestStore(t, 32)
	require.NoError(t, s.Put(mustRR(t, "Example.COM. 300 IN A 192.0.2.1")))

	found, err := s.Lookup("example.com.", dns.TypeANY)
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestStoreDeleteFreesRecords(t *testing.T) {
	s, _ := newTestStore(t, 32)
	require.NoError(t, s.Put(mustRR(t, "example.com. 300 IN A 192.0.2.1")))
	require.Equal(t, 1, s.Len())

	s.Delete("example.com.")
	require.Equal(t, 0, s.Len())

	found, err := s.Lookup("example.com.", dns.TypeANY)
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestStoreHandlesRecordsLargerThanOneChunk(t *testing.T) {
	s, _ := newTestStore(t, 32)

	// Two character-strings of 145 bytes each put the record's text form
	// well past one chunk's 252-byte payload.
	text := "this text record is deliberately long enough to span more than a single 256 byte chunk of storage so the chaining logic gets exercised end to end"
	long := "example.com. 300 IN TXT \"" + text + "\" \"" + text + "\""
	require.NoError(t, s.Put(mustRR(t, long)))

	found, err := s.Lookup("example.com.", dns.TypeTXT)
	require.NoError(t, err)
	require.Len(t, found, 1)
}
