// Package discovery advertises and finds tracking feeds on the local network
// over mDNS.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service a tracker advertises its feed under.
const ServiceType = "_airsketch._tcp"

// DefaultTimeout bounds a single Browse.
const DefaultTimeout = 2 * time.Second

// ErrNoFeed is returned when no tracker answered.
var ErrNoFeed = errors.New("no tracking feed found")

const pathKey = "path="

// Advertiser announces a feed until shut down.
type Advertiser struct {
	server *mdns.Server
}

// Advertise announces a feed served on port at the given websocket path.
// An empty instance uses the host name.
func Advertise(instance string, port int, path string) (*Advertiser, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("could not get hostname: %w", err)
		}
		instance = host
	}

	info := []string{"airsketch tracker", pathKey + path}

	service, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}

	return &Advertiser{server: server}, nil
}

// Shutdown stops answering queries.
func (a *Advertiser) Shutdown() error {
	if a == nil || a.server == nil {
		return nil
	}
	return a.server.Shutdown()
}

// Feed is one tracker found on the network.
type Feed struct {
	Instance string
	Addr     string
	URL      string
}

// FeedFromEntry builds a Feed from an mDNS answer. Answers without an IPv4
// address or port are rejected.
func FeedFromEntry(e *mdns.ServiceEntry) (Feed, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Feed{}, false
	}

	path := "/ws"
	for _, field := range e.InfoFields {
		if strings.HasPrefix(field, pathKey) {
			path = strings.TrimPrefix(field, pathKey)
		}
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	addr := net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port))
	return Feed{
		Instance: strings.TrimSuffix(e.Name, "."+ServiceType+".local."),
		Addr:     addr,
		URL:      "ws://" + addr + path,
	}, true
}

// Browse queries the network for trackers until timeout or ctx ends and
// returns what answered, deduplicated by address.
func Browse(ctx context.Context, timeout time.Duration) ([]Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	var feeds []Feed
	go func() {
		defer close(done)
		seen := make(map[string]bool)
		for e := range entries {
			f, ok := FeedFromEntry(e)
			if !ok || seen[f.Addr] {
				continue
			}
			seen[f.Addr] = true
			feeds = append(feeds, f)
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	err := mdns.Query(params)
	close(entries)
	<-done

	if err != nil {
		return nil, fmt.Errorf("mdns query: %w", err)
	}
	return feeds, nil
}

// Lookup returns the URL of the first tracker that answers.
func Lookup(ctx context.Context, timeout time.Duration) (string, error) {
	feeds, err := Browse(ctx, timeout)
	if err != nil {
		return "", err
	}
	if len(feeds) == 0 {
		return "", ErrNoFeed
	}
	log.Printf("Discovered tracking feed %s at %s", feeds[0].Instance, feeds[0].URL)
	return feeds[0].URL, nil
}
