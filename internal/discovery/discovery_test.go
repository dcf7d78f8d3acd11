package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestFromEntryPrefersIPv4(t *testing.T) {
	e := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "Music on studio"},
		HostName:      "studio.local.",
		Port:          5005,
		AddrIPv4:      []net.IP{net.ParseIP("192.168.1.20")},
		AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
	}

	s, ok := FromEntry(e)
	if !ok {
		t.Fatal("expected entry to map")
	}
	if s.Address != "http://192.168.1.20:5005" {
		t.Errorf("address = %q", s.Address)
	}
	if s.Name != "Music on studio" {
		t.Errorf("name = %q", s.Name)
	}
}

func TestFromEntryIPv6Brackets(t *testing.T) {
	e := &zeroconf.ServiceEntry{
		HostName: "studio.local.",
		Port:     5005,
		AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
	}

	s, ok := FromEntry(e)
	if !ok {
		t.Fatal("expected entry to map")
	}
	if s.Address != "http://[fe80::1]:5005" {
		t.Errorf("address = %q", s.Address)
	}
}

func TestFromEntryFallsBackToHostname(t *testing.T) {
	e := &zeroconf.ServiceEntry{
		HostName: "studio.local.",
		Port:     5005,
	}

	s, ok := FromEntry(e)
	if !ok {
		t.Fatal("expected entry to map")
	}
	if s.Address != "http://studio.local:5005" {
		t.Errorf("address = %q", s.Address)
	}
}

func TestFromEntryRejectsUnusable(t *testing.T) {
	if _, ok := FromEntry(nil); ok {
		t.Error("nil entry should not map")
	}
	if _, ok := FromEntry(&zeroconf.ServiceEntry{HostName: "x.local."}); ok {
		t.Error("entry without port should not map")
	}
	if _, ok := FromEntry(&zeroconf.ServiceEntry{Port: 5005}); ok {
		t.Error("entry without any address should not map")
	}
}
