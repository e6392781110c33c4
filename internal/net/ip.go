package net

import (
	"log"
	"net"
)

// GetOutgoingIP finds the local address other machines on the LAN should use
// to reach this relay. Nothing is sent; the UDP dial only picks a route.
func GetOutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return firstIPv4().String()
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// firstIPv4 is used on networks without a default route.
func firstIPv4() net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		log.Printf("[NET] Cannot list interfaces: %v", err)
		return net.IPv4(127, 0, 0, 1)
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	log.Println("[NET] No suitable local IP found, share links will use loopback")
	return net.IPv4(127, 0, 0, 1)
}
