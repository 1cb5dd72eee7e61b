// Package assets bundles the robot and scene descriptions shipped with jointsim.
package assets

import (
	"embed"
	"io/fs"
)

// Bundled asset names.
const (
	PlaneURDF = "plane.urdf"
	PandaURDF = "franka_panda/panda.urdf"
)

//go:embed plane.urdf franka_panda/panda.urdf
var bundled embed.FS

// FS returns the bundled asset directory. Register it as a search path to load assets by name.
func FS() fs.FS {
	return bundled
}
