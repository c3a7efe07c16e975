package zone

import (
	"fmt"
	"io"

	"github.com/miekg/dns"
	"go.uber.org/zap"
)

// LoadZoneFile parses a standard zone-file formatted reader and stores
// every record it contains, returning the count loaded.
func (s *Store) LoadZoneFile(r io.Reader, origin, filename string) (int, error) {
	parser := dns.NewZoneParser(r, origin, filename)

	count := 0
	for rr, ok := parser.Next(); ok; rr, ok = parser.Next() {
		if err := s.Put(rr); err != nil {
			return count, fmt.Errorf("zone: store record %s: %w", rr.Header().Name, err)
		}
		count++
	}
	if err := parser.Err(); err != nil {
		return count, fmt.Errorf("zone: parse zone file: %w", err)
	}

	s.log.Info("zone: loaded zone file", zap.String("origin", origin), zap.Int("records", count))
	return count, nil
}
