package netlink

import (
	ne "github.com/josharian/native"
)

// Htons swaps a port into network byte order as other sock_diag libraries
// (e.g. github.com/florianl/go-diag) keep ports as they lie on the wire.
func Htons(in uint16) uint16 {
	if !ne.IsBigEndian {
		return uint16((in&0xFF)<<8) | uint16((in>>8)&0xFF)
	}
	return in
}

// Ntohs is the inverse of Htons.
func Ntohs(in uint16) uint16 {
	return Htons(in)
}
