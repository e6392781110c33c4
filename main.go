package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	boardnet "GoBoardOverlay/internal/net"
	"GoBoardOverlay/internal/overlay"
	"GoBoardOverlay/internal/protocol"
	"GoBoardOverlay/internal/session"
	"GoBoardOverlay/internal/ui"

	"github.com/google/uuid"
)

const (
	dialTimeout   = 5 * time.Second
	browseTimeout = 2 * time.Second
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage:
  %[1]s relay  [flags]            run a standalone relay
  %[1]s host   [flags] [link]     commentate (starts a relay when none is given)
  %[1]s viewer [flags] [link]     watch read-only
  %[1]s overlay://...             open a share link
`, os.Args[0])
}

func main() {
	args := os.Args[1:]
	mode := "host"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") && !session.IsLink(args[0]) {
		mode, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet(mode, flag.ExitOnError)
	fs.Usage = usage
	flags := session.RegisterFlags(fs)
	fs.Parse(args)

	ctx, err := flags.Resolve(fs.Arg(0))
	if err != nil {
		log.Fatalf("Invalid session: %v", err)
	}

	switch mode {
	case "relay":
		runRelay(ctx)
	case "host":
		runPeer(ctx)
	case "viewer":
		ctx.Role = protocol.RoleViewer
		runPeer(ctx)
	default:
		usage()
		os.Exit(2)
	}
}

func listenPort(listen string) int {
	port, err := strconv.Atoi(listen[strings.LastIndex(listen, ":")+1:])
	if err != nil {
		return session.DefaultPort
	}
	return port
}

func advertise(ctx session.Context) {
	if !ctx.MDNS {
		return
	}
	if _, err := boardnet.Advertise(listenPort(ctx.Listen), ctx.RoomID); err != nil {
		log.Printf("[MDNS] Advertising failed: %v", err)
		return
	}
	log.Printf("[MDNS] Advertising %s for room %q", boardnet.ServiceType, ctx.RoomID)
}

func shareLinks(ctx session.Context, peer *overlay.Peer) []string {
	host := fmt.Sprintf("%s:%d", boardnet.GetOutgoingIP(), listenPort(ctx.Listen))
	if peer != nil {
		return []string{peer.ShareLink(host, protocol.RoleHost), peer.ShareLink(host, protocol.RoleViewer)}
	}
	return []string{ctx.ShareLink(host, protocol.RoleHost, nil), ctx.ShareLink(host, protocol.RoleViewer, nil)}
}

func runRelay(ctx session.Context) {
	log.Println("Starting as RELAY")
	relay := boardnet.NewRelay()
	advertise(ctx)
	for _, l := range shareLinks(ctx, nil) {
		log.Printf("Share: %s", l)
	}
	log.Fatal(relay.ListenAndServe(ctx.Listen))
}

// discover fills in the relay from mDNS, preferring one serving our room.
func discover(ctx *session.Context) {
	found, err := boardnet.Browse(browseTimeout)
	if err != nil {
		log.Printf("[MDNS] %v", err)
		return
	}
	for _, d := range found {
		if ctx.RoomID == "" || d.Room == ctx.RoomID {
			ctx.RelayURL = d.RelayURL()
			if ctx.RoomID == "" {
				ctx.RoomID = d.Room
			}
			log.Printf("[MDNS] Found relay %s (%s)", d.Addr, d.Name)
			return
		}
	}
}

func runPeer(ctx session.Context) {
	log.Printf("Starting as %s", ctx.Role)
	if ctx.RelayURL == "" && ctx.MDNS {
		discover(&ctx)
	}

	embedded := false
	if ctx.RelayURL == "" && !ctx.IsViewer() {
		if ctx.RoomID == "" {
			ctx.RoomID = uuid.NewString()[:8]
		}
		relay := boardnet.NewRelay()
		go func() {
			if err := relay.ListenAndServe(ctx.Listen); err != nil {
				log.Printf("[RELAY] Stopped: %v", err)
			}
		}()
		advertise(ctx)
		ctx.RelayURL = fmt.Sprintf("ws://127.0.0.1:%d/ws", listenPort(ctx.Listen))
		embedded = true
	}

	for _, d := range ctx.Validate() {
		log.Printf("[CONFIG] %s", d)
	}

	peer, err := overlay.New(ctx)
	if err != nil {
		log.Fatalf("Cannot start: %v", err)
	}

	go func() {
		// Give the UI and an embedded relay time to come up.
		time.Sleep(500 * time.Millisecond)
		dctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()
		peer.Connect(dctx)
	}()

	var links []string
	if embedded {
		links = shareLinks(ctx, peer)
		for _, l := range links {
			log.Printf("Share: %s", l)
		}
	}
	ui.RunApp(peer, links...)
}
