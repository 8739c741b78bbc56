// Package assets embeds the default image and shader, served by the
// bundled watcher when no asset directory is available.
package assets

import (
	"embed"
	"io/fs"
)

// Default asset names.
const (
	ImageName  = "nuero.png"
	ShaderName = "shader.wgsl"
)

//go:embed nuero.png shader.wgsl
var files embed.FS

// FS returns the embedded assets.
func FS() fs.FS { return files }

// Names returns the embedded asset names.
func Names() []string { return []string{ImageName, ShaderName} }
