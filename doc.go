// Package doctree provides directory semantics over tree-structured document
// providers that expose folders and files only through opaque identifiers.
//
// A provider is anything satisfying the narrow [Provider] port: list the
// children of a folder and create a child under a folder. On top of it the
// package layers a query [Client], a name [Resolver] and a [Bootstrapper]
// that idempotently creates a required folder hierarchy under a user-chosen
// root and hands the resulting location to a [Settings] collaborator.
//
// # Supported Drivers
//
//   - local: A local volume via afero (import _ "github.com/nuln/doctree/driver/local")
//   - rclone: Any rclone-supported remote (import _ "github.com/nuln/doctree/driver/rclone")
//
// # Quick Start
//
//	import (
//	    "github.com/nuln/doctree"
//	    _ "github.com/nuln/doctree/driver/local"
//	)
//
//	provider, err := doctree.Open(&doctree.Config{Type: "local", BasePath: "/sdcard"})
//	resolver := doctree.NewResolver(doctree.NewClient(provider, logrus.StandardLogger()))
//	res := doctree.NewBootstrapper(resolver, settings).Run(ctx, doctree.RootLocation("primary:EasyRPG"))
//
// # Import All Drivers
//
//	import _ "github.com/nuln/doctree/drivers"
package doctree
