package discovery

import (
	"net"
	"testing"

	"github.com/hashicorp/mdns"
)

func TestFromEntry(t *testing.T) {
	tests := []struct {
		name   string
		entry  *mdns.ServiceEntry
		want   string
		wantOK bool
	}{
		{"nil", nil, "", false},
		{"no port", &mdns.ServiceEntry{AddrV4: net.IPv4(10, 0, 0, 2)}, "", false},
		{"no address", &mdns.ServiceEntry{Port: 8080}, "", false},
		{"ipv4", &mdns.ServiceEntry{AddrV4: net.IPv4(10, 0, 0, 2), Port: 8080}, "10.0.0.2:8080", true},
		{"ipv6", &mdns.ServiceEntry{AddrV6: net.ParseIP("fe80::1"), Port: 9000}, "[fe80::1]:9000", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := fromEntry(tt.entry)
			if ok != tt.wantOK || got.Addr != tt.want {
				t.Errorf("fromEntry = %q, %v; want %q, %v", got.Addr, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestServerURL(t *testing.T) {
	s := Server{Addr: "192.168.1.4:7420"}
	if got := s.URL(); got != "http://192.168.1.4:7420" {
		t.Errorf("URL() = %q", got)
	}
}
