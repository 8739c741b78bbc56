// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gglive"
)

// DeviceHandle provides GPU device access from the host application.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, so any gogpu
// provider can be handed to [NewDevice] directly.
type DeviceHandle = gpucontext.DeviceProvider

// halProvider is implemented by providers that expose their HAL objects,
// such as the gogpu context provider.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// Device is the negotiated GPU device the pipeline compiles against.
//
// When the provider exposes a hal.Device, every successfully compiled
// shader program is also turned into a HAL shader module, replacing the
// previous one, and the bind group layout is created once. Errors from
// the HAL have no caller to return to and go to the error reporter.
type Device struct {
	handle   DeviceHandle
	reporter func(error)

	mu     sync.Mutex
	hal    hal.Device
	layout hal.BindGroupLayout
	module hal.ShaderModule
}

// NewDevice wraps handle. A nil reporter logs at error level.
func NewDevice(handle DeviceHandle, reporter func(error)) (*Device, error) {
	if handle == nil {
		return nil, ErrNilDevice
	}
	if reporter == nil {
		reporter = func(err error) { gglive.Logger().Error("render: device error", "err", err) }
	}
	d := &Device{handle: handle, reporter: reporter}

	if hp, ok := handle.(halProvider); ok {
		if device, ok := hp.HalDevice().(hal.Device); ok && device != nil {
			d.hal = device
			d.createLayout()
		}
	}
	gglive.Logger().Info("render: device ready", "hal", d.hal != nil)
	return d, nil
}

// Handle returns the underlying device provider.
func (d *Device) Handle() DeviceHandle { return d.handle }

// HasHAL reports whether the device compiles shader modules on the HAL.
func (d *Device) HasHAL() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hal != nil
}

// Report forwards err to the error reporter.
func (d *Device) Report(err error) { d.reporter(err) }

func (d *Device) createLayout() {
	layout, err := d.hal.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "gglive_view_layout",
		Entries: BindGroupLayout(),
	})
	if err != nil {
		d.reporter(fmt.Errorf("render: create bind group layout: %w", err))
		return
	}
	d.layout = layout
}

// installShader creates a HAL shader module for spirv and destroys the
// previous one. On failure the previous module is kept.
func (d *Device) installShader(spirv []uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hal == nil {
		return
	}
	module, err := d.hal.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: "gglive_view_shader",
		Source: hal.ShaderSource{
			SPIRV: spirv,
		},
	})
	if err != nil {
		d.reporter(fmt.Errorf("render: create shader module: %w", err))
		return
	}
	if d.module != nil {
		d.hal.DestroyShaderModule(d.module)
	}
	d.module = module
}

// Close releases the HAL objects created by the device. The provider
// itself belongs to the host and is left alone.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hal == nil {
		return
	}
	if d.module != nil {
		d.hal.DestroyShaderModule(d.module)
		d.module = nil
	}
	if d.layout != nil {
		d.hal.DestroyBindGroupLayout(d.layout)
		d.layout = nil
	}
	d.hal = nil
}

// SoftwareHandle is a DeviceHandle with no GPU behind it. Frames are
// composed on the CPU; the surface format is the frame format.
type SoftwareHandle struct{}

// Device returns nil for the software device.
func (SoftwareHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the software device.
func (SoftwareHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the software device.
func (SoftwareHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns the frame format.
func (SoftwareHandle) SurfaceFormat() gputypes.TextureFormat { return FrameFormat }

// SoftwareAdapterName is the adapter name SoftwareHandle reports.
const SoftwareAdapterName = "gglive software"

// AdapterInfo reports a software adapter so consumers pick their CPU
// paths.
func (SoftwareHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: SoftwareAdapterName, Type: gpucontext.AdapterTypeSoftware}
}

// Ensure SoftwareHandle implements DeviceHandle.
var _ DeviceHandle = SoftwareHandle{}
