package render

import (
	"encoding/binary"
	"math"
)

// UniformSize is the size of the uniform block in bytes.
const UniformSize = 32

// Uniforms is the view state uploaded to the shader.
type Uniforms struct {
	// Dim is the image size in pixels.
	Dim [2]float32

	// Pos is the pan offset, in units of the window size.
	Pos [2]float32

	// Scale is the zoom factor; 1 shows the whole image.
	Scale float32
}

// Bytes encodes u into the uniform block layout.
func (u Uniforms) Bytes() [UniformSize]byte {
	var b [UniformSize]byte
	for i, v := range [...]float32{u.Dim[0], u.Dim[1], u.Pos[0], u.Pos[1], u.Scale} {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}
