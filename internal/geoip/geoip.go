package geoip

import (
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

var (
	mu            sync.RWMutex
	countryReader *geoip2.Reader
)

// Init opens the country database. Calling it again replaces the reader.
func Init(countryPath string) error {
	if countryPath == "" {
		return fmt.Errorf("no country database configured")
	}
	r, err := geoip2.Open(countryPath)
	if err != nil {
		return fmt.Errorf("failed to open country DB at %s: %w", countryPath, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if countryReader != nil {
		countryReader.Close()
	}
	countryReader = r
	return nil
}

// Country returns the ISO code for a literal IP host, or "" when the host is
// a domain name, the database is not loaded, or the address is unknown.
// Hostnames are never resolved.
func Country(host string) string {
	ip := net.ParseIP(strings.Trim(host, "[]"))
	if ip == nil {
		return ""
	}

	mu.RLock()
	defer mu.RUnlock()
	if countryReader == nil {
		return ""
	}
	c, err := countryReader.Country(ip)
	if err != nil {
		return ""
	}
	return c.Country.IsoCode
}

func Loaded() bool {
	mu.RLock()
	defer mu.RUnlock()
	return countryReader != nil
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	if countryReader != nil {
		countryReader.Close()
		countryReader = nil
	}
}
