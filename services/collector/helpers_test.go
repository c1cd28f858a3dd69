package collector

import "net"

func listenLoopback() (net.PacketConn, error) {
	return net.ListenPacket("udp", "127.0.0.1:0")
}
