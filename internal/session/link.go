package session

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"GoBoardOverlay/internal/geometry"
	"GoBoardOverlay/internal/protocol"
)

const (
	// Scheme prefixes share links handed between participants.
	Scheme = "overlay://"
	// DefaultPort is where the relay listens unless told otherwise.
	DefaultPort = 8888
)

var (
	ErrBadLink = errors.New("session: bad share link")
	ErrBadRole = errors.New("session: unknown role")
	ErrBadGrid = errors.New("session: bad grid parameter")
)

// IsLink reports whether s looks like a share link.
func IsLink(s string) bool { return strings.HasPrefix(s, Scheme) }

// ApplyLink overlays the values in an overlay://host:port/?... link onto c.
// The link's host becomes the relay address.
func (c *Context) ApplyLink(link string) error {
	if !IsLink(link) {
		return fmt.Errorf("%w: missing %s prefix", ErrBadLink, Scheme)
	}
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadLink, err)
	}
	if u.Host != "" {
		c.RelayURL = "ws://" + u.Host + "/ws"
	}
	q := u.Query()

	if v := q.Get("role"); v != "" {
		r, ok := protocol.ParseRole(v)
		if !ok {
			return fmt.Errorf("%w: %q", ErrBadRole, v)
		}
		c.Role = r
	}
	setString(&c.RoomID, q.Get("Network"))
	setString(&c.Label, strings.TrimSpace(q.Get("label")))
	if v := q.Get("host"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			setString(&c.HostTag, HostTagFor(n))
		}
	}
	if v := q.Get("stone"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.StoneSize, c.StoneSizeSet = n, true
		}
	}
	setString(&c.CoordinateColor, q.Get("CC"))
	setString(&c.Codec, q.Get("codec"))
	if v := q.Get("grid"); v != "" {
		grid, err := ParseGrid(v)
		if err != nil {
			return err
		}
		c.InitialGrid = grid
	}
	return nil
}

// ParseGrid reads "x,y;x,y;x,y;x,y".
func ParseGrid(s string) ([]geometry.Point, error) {
	parts := strings.Split(s, ";")
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: want 4 points, got %d", ErrBadGrid, len(parts))
	}
	out := make([]geometry.Point, 0, 4)
	for _, p := range parts {
		xy := strings.Split(p, ",")
		if len(xy) != 2 {
			return nil, fmt.Errorf("%w: %q", ErrBadGrid, p)
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(xy[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(xy[1]), 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadGrid, p)
		}
		out = append(out, geometry.Point{X: int(x + 0.5), Y: int(y + 0.5)})
	}
	return out, nil
}

// FormatGrid is the inverse of ParseGrid.
func FormatGrid(pts []geometry.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("%d,%d", p.X, p.Y)
	}
	return strings.Join(parts, ";")
}

// ShareLink builds a link that starts another participant in the given role
// on the same relay and room. corners, when calibrated, are passed along so
// a viewer can draw before the first set-grid arrives.
func (c Context) ShareLink(relayHost string, role protocol.Role, corners []geometry.Point) string {
	q := url.Values{}
	if c.RoomID != "" {
		q.Set("Network", c.RoomID)
	}
	if role == protocol.RoleViewer {
		q.Set("role", "VW")
	} else {
		q.Set("role", "CO")
	}
	if len(corners) == 4 {
		q.Set("grid", FormatGrid(corners))
	}
	if c.CoordinateColor != "" {
		q.Set("CC", c.CoordinateColor)
	}
	if c.StoneSizeSet {
		q.Set("stone", strconv.Itoa(c.StoneSize))
	}
	if c.Codec != "" && c.Codec != "json" {
		q.Set("codec", c.Codec)
	}
	return Scheme + relayHost + "/?" + q.Encode()
}
