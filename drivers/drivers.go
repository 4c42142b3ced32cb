// Package drivers is a convenience package that registers all built-in
// provider drivers. Import it with a blank identifier to make all drivers
// available:
//
//	import _ "github.com/nuln/doctree/drivers"
package drivers

import (
	"github.com/nuln/doctree"
	_ "github.com/nuln/doctree/driver/local"
	_ "github.com/nuln/doctree/driver/rclone"
)

// Init ensures all built-in drivers are registered.
// This is called automatically by importing the package.
func Init() {}

// List returns a list of all registered provider drivers.
func List() []string {
	return doctree.Drivers()
}
