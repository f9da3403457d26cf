// Package rconfig re-exports the core's frame Config under the name
// external callers (cmd/raybox, gltfio consumers) reach for, without
// forcing the core package to import back into it.
package rconfig

import raybox "github.com/kesh3d/raybox"

type Config = raybox.Config

func DefaultConfig() Config {
	return raybox.DefaultConfig()
}
