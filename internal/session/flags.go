package session

import (
	"flag"
	"fmt"

	"GoBoardOverlay/internal/protocol"
)

// Flags holds the command-line overrides. Only flags the user actually set
// win over the file and the share link.
type Flags struct {
	fs *flag.FlagSet

	Config    string
	role      string
	room      string
	label     string
	host      int
	color     string
	relay     string
	codec     string
	listen    string
	stoneSize int
	mdns      bool
}

// RegisterFlags defines the session flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.Config, "config", "", "Path to a YAML session file")
	fs.StringVar(&f.role, "role", "", "HOST (CO) or VIEWER (VW)")
	fs.StringVar(&f.room, "room", "", "Room to join on the relay")
	fs.StringVar(&f.label, "label", "", "Name shown next to your cursor")
	fs.IntVar(&f.host, "host", 0, "Commentator number, picks your color")
	fs.StringVar(&f.color, "color", "", "Your marker color, e.g. #e53935")
	fs.StringVar(&f.relay, "relay", "", "Relay websocket url, e.g. ws://10.0.0.2:8888/ws")
	fs.StringVar(&f.codec, "codec", "", "Wire codec: json or msgpack")
	fs.StringVar(&f.listen, "listen", "", "Relay listen address")
	fs.IntVar(&f.stoneSize, "stone", 0, "Stone size preference (125 is neutral)")
	fs.BoolVar(&f.mdns, "mdns", false, "Advertise or discover the relay over mDNS")
	return f
}

// Resolve builds the context: defaults, then the YAML file, then the share
// link, then explicitly set flags.
func (f *Flags) Resolve(link string) (Context, error) {
	ctx := Default()
	if f.Config != "" {
		if err := ctx.LoadFile(f.Config); err != nil {
			return ctx, err
		}
	}
	if link != "" {
		if err := ctx.ApplyLink(link); err != nil {
			return ctx, err
		}
	}

	var err error
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "role":
			r, ok := protocol.ParseRole(f.role)
			if !ok {
				err = fmt.Errorf("%w: %q", ErrBadRole, f.role)
				return
			}
			ctx.Role = r
		case "room":
			ctx.RoomID = f.room
		case "label":
			ctx.Label = f.label
		case "host":
			ctx.HostTag = HostTagFor(f.host)
		case "color":
			ctx.UserColor = f.color
		case "relay":
			ctx.RelayURL = f.relay
		case "codec":
			ctx.Codec = f.codec
		case "listen":
			ctx.Listen = f.listen
		case "stone":
			ctx.StoneSize, ctx.StoneSizeSet = f.stoneSize, true
		case "mdns":
			ctx.MDNS = f.mdns
		}
	})
	if err != nil {
		return ctx, err
	}
	ctx.EnsureOwner()
	return ctx, nil
}
