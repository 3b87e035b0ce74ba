//go:build linux

package greenrt

import "golang.org/x/sys/unix"

// mapStackFlags adds Linux-only hints: MAP_STACK (satisfy NX/stack
// accounting for mappings used as a call stack) and MAP_GROWSDOWN (let
// the kernel recognize this as a downward-growing stack region).
func mapStackFlags() int {
	return unix.MAP_STACK | unix.MAP_GROWSDOWN
}
