// Package geo resolves a client IP address to a geographic region, using a
// MaxMind MMDB database and short-circuiting private/loopback/link-local
// addresses before ever touching it.
package geo

import (
	"net"

	"github.com/oschwald/maxminddb-golang"

	"github.com/meeting-platform/core/internal/status"
)

// Location is the subset of MMDB city-database fields the service needs.
// IsPrivate is set, with every other field left zero, when the queried IP
// falls in private space and the database was never touched.
type Location struct {
	Country   string
	ISOCode   string
	Region    string
	City      string
	Timezone  string
	Latitude  float64
	Longitude float64
	IsPrivate bool
}

// IsPrivate reports whether ip falls in a non-globally-routable range:
// loopback, RFC1918/ULA private space, or link-local. These never appear in
// a geo database, so lookups for them are skipped outright.
func IsPrivate(ip net.IP) bool {
	if ip == nil {
		return true
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}

// Lookup resolves IP addresses against a MaxMind MMDB file.
type Lookup struct {
	db *maxminddb.Reader
}

// Open memory-maps the MMDB file at path.
func Open(path string) (*Lookup, error) {
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, status.Unavailable("open geoip database: %v", err)
	}
	return &Lookup{db: db}, nil
}

// Close unmaps the underlying database file.
func (l *Lookup) Close() error {
	return l.db.Close()
}

// mmdbRecord mirrors the subset of a MaxMind GeoLite2-City record the
// service reads.
type mmdbRecord struct {
	Country struct {
		ISOCode string            `maxminddb:"iso_code"`
		Names   map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
	Subdivisions []struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"subdivisions"`
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
		TimeZone  string  `maxminddb:"time_zone"`
	} `maxminddb:"location"`
}

// Resolve returns the location for ip. A nil or unparseable ip yields
// InvalidArgument. An ip in private/loopback/link-local space yields a
// zero Location with IsPrivate set and no error, without the database
// ever being touched. A database that failed to open, or one that errors
// on read, yields Unavailable. Fields absent from the record are left
// empty rather than treated as a lookup failure.
func (l *Lookup) Resolve(ip net.IP) (Location, error) {
	if ip == nil {
		return Location{}, status.InvalidArgument("geo: empty or unparseable ip")
	}
	if IsPrivate(ip) {
		return Location{IsPrivate: true}, nil
	}
	if l == nil || l.db == nil {
		return Location{}, status.Unavailable("geo: database unavailable")
	}

	var record mmdbRecord
	if err := l.db.Lookup(ip, &record); err != nil {
		return Location{}, status.Unavailable("geo: lookup failed: %v", err)
	}

	loc := Location{
		Country:   record.Country.Names["en"],
		ISOCode:   record.Country.ISOCode,
		City:      record.City.Names["en"],
		Timezone:  record.Location.TimeZone,
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
	}
	if len(record.Subdivisions) > 0 {
		loc.Region = record.Subdivisions[0].Names["en"]
	}
	return loc, nil
}
