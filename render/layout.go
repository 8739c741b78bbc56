package render

import "github.com/gogpu/gputypes"

// Binding slots of the shader's bind group 0.
const (
	BindingTexture        = 0
	BindingLinearSampler  = 1
	BindingNearestSampler = 2
	BindingUniforms       = 3
)

// FrameFormat is the pixel format of composed frames.
const FrameFormat = gputypes.TextureFormatRGBA8Unorm

// BindGroupLayout returns the layout entries the shader program is
// compiled against.
func BindGroupLayout() []gputypes.BindGroupLayoutEntry {
	return []gputypes.BindGroupLayoutEntry{
		{
			Binding:    BindingTexture,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		},
		{
			Binding:    BindingLinearSampler,
			Visibility: gputypes.ShaderStageFragment,
			Sampler: &gputypes.SamplerBindingLayout{
				Type: gputypes.SamplerBindingTypeFiltering,
			},
		},
		{
			Binding:    BindingNearestSampler,
			Visibility: gputypes.ShaderStageFragment,
			Sampler: &gputypes.SamplerBindingLayout{
				Type: gputypes.SamplerBindingTypeFiltering,
			},
		},
		{
			Binding:    BindingUniforms,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer: &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: UniformSize,
			},
		},
	}
}
