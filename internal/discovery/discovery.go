// Package discovery finds Apple Music Remote servers on the local
// network via mDNS.
package discovery

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service the server advertises.
	ServiceType = "_applemusic._tcp"

	defaultTimeout = 5 * time.Second
)

// Server is a discovered remote server.
type Server struct {
	Name    string
	Host    string
	Port    int
	Address string // http base URL
}

// Browse looks for advertised servers and returns everything found
// within the timeout.
func Browse(ctx context.Context, timeout time.Duration) ([]Server, error) {
	if timeout == 0 {
		timeout = defaultTimeout
	}

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, ServiceType, "local.", entries); err != nil {
		return nil, err
	}

	var servers []Server
	for entry := range entries {
		if s, ok := FromEntry(entry); ok {
			servers = append(servers, s)
		}
	}
	return servers, nil
}

// FromEntry maps an mDNS service entry to a Server. Prefers an IPv4
// address, then IPv6, then the advertised hostname.
func FromEntry(e *zeroconf.ServiceEntry) (Server, bool) {
	if e == nil || e.Port == 0 {
		return Server{}, false
	}

	var host string
	switch {
	case len(e.AddrIPv4) > 0:
		host = e.AddrIPv4[0].String()
	case len(e.AddrIPv6) > 0:
		// IPv6 literal needs brackets in URLs.
		host = "[" + e.AddrIPv6[0].String() + "]"
	case e.HostName != "":
		host = strings.TrimSuffix(e.HostName, ".")
	default:
		return Server{}, false
	}

	hostPort := net.JoinHostPort(strings.Trim(host, "[]"), strconv.Itoa(e.Port))
	return Server{
		Name:    e.Instance,
		Host:    host,
		Port:    e.Port,
		Address: "http://" + hostPort,
	}, true
}
