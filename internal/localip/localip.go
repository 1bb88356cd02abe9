// Package localip detects the host's LAN IP address, the value the TLS
// certificate's SAN set and the startup banner both need (spec §4.B, §2
// data flow). The Rust prototype (main.rs) reaches for the
// local_ip_address crate; the standard library's net package can answer
// the same question (dial a UDP "connection" — no packets are sent — and
// read back the local address the kernel would pick), so there's no
// third-party dependency to wire for this one ambient concern.
package localip

import "net"

// Detect returns the local IP address that would be used to reach the
// public internet, which is also the address LAN peers see. It never
// issues any actual network traffic: UDP "Dial" only consults the
// routing table.
func Detect() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", errNoUDPAddr
	}
	return addr.IP.String(), nil
}

var errNoUDPAddr = &net.AddrError{Err: "localip: could not determine local UDP address"}
