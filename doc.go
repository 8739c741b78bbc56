// Package gglive is a hot-reloading GPU viewer for the GoGPU ecosystem.
//
// # Overview
//
// gglive opens a window, negotiates a GPU device asynchronously and draws
// an image through a WGSL shader program. Both assets are watched on disk:
// saving either file pushes the new bytes into the dispatch loop and the
// viewer reloads them without restarting.
//
// # Architecture
//
// The repository is organized into:
//   - event: event types and the multi-producer event queue
//   - loop: the synchronous, single-consumer dispatch loop and its windows
//   - router: the deferred-init router that buffers events until the
//     asynchronously constructed application arrives, then replays them
//   - watch: the asset watcher (filesystem, bundled and host-delegated
//     variants) feeding AssetChanged events into the loop
//   - render: shader compilation (naga), image decoding and frame composition (gg)
//   - app: the application and its construction future
//   - host: offscreen and gogpu window hosts
//   - config: TOML configuration with environment overrides
//   - assets: the embedded default image and shader
//
// # Ordering
//
// Every producer (host window callbacks, the watcher goroutine, the
// construction goroutine) enqueues into one FIFO queue drained by the
// dispatch loop. Events observed before the application exists are
// replayed after it is installed, in their original order.
//
// # Logging
//
// gglive is silent by default. Call [SetLogger] to enable logging.
package gglive

// Version information
const (
	// Version is the current version of gglive
	Version = "0.3.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 3

	// VersionPatch is the patch version
	VersionPatch = 0
)
