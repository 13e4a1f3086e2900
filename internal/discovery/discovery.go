// Package discovery advertises a medannot server on the local network over
// mDNS and finds advertised servers, so clients do not need a configured
// backend URL.
package discovery

import (
	"context"
	"fmt"
	"net"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/sprite-ai/medannot/internal/logging"
)

// ServiceType is the DNS-SD service name.
const ServiceType = "_medannot._tcp"

// Server is a discovered API endpoint.
type Server struct {
	Instance string
	Host     string
	Addr     string // host:port usable in a URL
	Info     []string
}

// URL is the base URL of the server's HTTP API.
func (s Server) URL() string { return "http://" + s.Addr }

// Advertiser publishes the service until Shutdown.
type Advertiser struct {
	srv *mdns.Server
}

// Advertise announces a server listening on port. info is published as TXT
// records.
func Advertise(port int, info ...string) (*Advertiser, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("getting hostname: %w", err)
	}
	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("creating mDNS service: %w", err)
	}
	srv, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("starting mDNS server: %w", err)
	}
	logging.Logger().Info("advertising", "service", ServiceType, "instance", host, "port", port)
	return &Advertiser{srv: srv}, nil
}

// Shutdown stops answering queries.
func (a *Advertiser) Shutdown() error {
	return a.srv.Shutdown()
}

// Browse queries the network for timeout and returns every server that
// answered, sorted by address. It returns early if ctx is cancelled.
func Browse(ctx context.Context, timeout time.Duration) ([]Server, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	seen := make(map[string]Server)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for e := range entries {
			if s, ok := fromEntry(e); ok {
				seen[s.Addr] = s
			}
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errc := make(chan error, 1)
	go func() { errc <- mdns.Query(params) }()

	var err error
	select {
	case err = <-errc:
	case <-ctx.Done():
		err = ctx.Err()
		// mdns.Query still owns entries until its timeout expires.
		<-errc
	}
	close(entries)
	<-collected

	servers := make([]Server, 0, len(seen))
	for _, s := range seen {
		servers = append(servers, s)
	}
	sort.Slice(servers, func(i, j int) bool { return servers[i].Addr < servers[j].Addr })
	if err != nil {
		return servers, fmt.Errorf("mDNS query: %w", err)
	}
	return servers, nil
}

func fromEntry(e *mdns.ServiceEntry) (Server, bool) {
	if e == nil || e.Port == 0 {
		return Server{}, false
	}
	var ip net.IP
	switch {
	case e.AddrV4 != nil:
		ip = e.AddrV4
	case e.AddrV6 != nil:
		ip = e.AddrV6
	default:
		return Server{}, false
	}
	return Server{
		Instance: e.Name,
		Host:     e.Host,
		Addr:     net.JoinHostPort(ip.String(), strconv.Itoa(e.Port)),
		Info:     e.InfoFields,
	}, true
}
