package net

import (
	"fmt"
	"net"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service relays advertise on the LAN.
const ServiceType = "_goboard-overlay._tcp"

const roomKey = "room="

// Advertise publishes a relay on port. The room, when set, goes into the TXT
// record so browsers can pick the right session.
func Advertise(port int, room string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	info := []string{"GoBoardOverlay"}
	if room != "" {
		info = append(info, roomKey+room)
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Discovered is a relay found on the LAN.
type Discovered struct {
	Name string
	Addr string
	Room string
}

// RelayURL is the websocket endpoint of the discovered relay.
func (d Discovered) RelayURL() string {
	return "ws://" + d.Addr + "/ws"
}

// Browse listens for relays for the given duration.
func Browse(timeout time.Duration) ([]Discovered, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	var (
		mu    sync.Mutex
		found []Discovered
		wg    sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for e := range entries {
			d, ok := fromEntry(e)
			if !ok {
				continue
			}
			mu.Lock()
			if !slices.ContainsFunc(found, func(x Discovered) bool { return x.Addr == d.Addr }) {
				found = append(found, d)
			}
			mu.Unlock()
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	wg.Wait()
	if err != nil {
		return nil, fmt.Errorf("mDNS query failed: %w", err)
	}
	return found, nil
}

func fromEntry(e *mdns.ServiceEntry) (Discovered, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Discovered{}, false
	}
	return Discovered{
		Name: e.Name,
		Addr: net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port)),
		Room: roomFromInfo(e.InfoFields),
	}, true
}

func roomFromInfo(fields []string) string {
	for _, f := range fields {
		if room, ok := strings.CutPrefix(f, roomKey); ok {
			return room
		}
	}
	return ""
}
