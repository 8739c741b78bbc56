// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// fakeHAL implements the hal.Device methods the render device calls.
// Any other method panics through the nil embedded interface.
type fakeHAL struct {
	hal.Device
	created, destroyed int
	layouts            int
	failNext           bool
}

type fakeModule struct {
	hal.ShaderModule
	id int
}

type fakeLayout struct {
	hal.BindGroupLayout
}

func (f *fakeHAL) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	if f.failNext {
		f.failNext = false
		return nil, errors.New("validation failed")
	}
	if len(desc.Source.SPIRV) == 0 {
		return nil, errors.New("empty module")
	}
	f.created++
	return &fakeModule{id: f.created}, nil
}

func (f *fakeHAL) DestroyShaderModule(hal.ShaderModule) { f.destroyed++ }

func (f *fakeHAL) CreateBindGroupLayout(desc *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error) {
	f.layouts = len(desc.Entries)
	return &fakeLayout{}, nil
}

func (f *fakeHAL) DestroyBindGroupLayout(hal.BindGroupLayout) { f.layouts = 0 }

type halHandle struct {
	SoftwareHandle
	dev hal.Device
}

func (h halHandle) HalDevice() any { return h.dev }
func (h halHandle) HalQueue() any  { return nil }

func TestSoftwareHandle(t *testing.T) {
	var handle DeviceHandle = SoftwareHandle{}

	if handle.Device() != nil {
		t.Error("SoftwareHandle.Device() should return nil")
	}
	if handle.Queue() != nil {
		t.Error("SoftwareHandle.Queue() should return nil")
	}
	if handle.Adapter() != nil {
		t.Error("SoftwareHandle.Adapter() should return nil")
	}
	if handle.SurfaceFormat() != gputypes.TextureFormatRGBA8Unorm {
		t.Error("SoftwareHandle.SurfaceFormat() should return RGBA8Unorm")
	}
	info := handle.AdapterInfo()
	if info.Type != gpucontext.AdapterTypeSoftware {
		t.Errorf("AdapterInfo().Type = %v, want Software", info.Type)
	}
	if info.Name != SoftwareAdapterName {
		t.Errorf("AdapterInfo().Name = %q, want %q", info.Name, SoftwareAdapterName)
	}

	dev, err := NewDevice(handle, nil)
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	if dev.HasHAL() {
		t.Error("software device should not use the HAL")
	}
	dev.Close()
}

func TestNewDeviceNil(t *testing.T) {
	if _, err := NewDevice(nil, nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("err = %v, want ErrNilDevice", err)
	}
}

func TestDeviceSwapsShaderModules(t *testing.T) {
	fake := &fakeHAL{}
	var reported []error
	dev, err := NewDevice(halHandle{dev: fake}, func(err error) { reported = append(reported, err) })
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	if !dev.HasHAL() {
		t.Fatal("HAL provider not detected")
	}
	if fake.layouts != 4 {
		t.Errorf("layout entries = %d, want 4", fake.layouts)
	}

	p, err := NewPipeline(dev, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if err := p.LoadShader(validShader); err != nil {
		t.Fatalf("LoadShader: %v", err)
	}
	if err := p.LoadShader(validShader); err != nil {
		t.Fatalf("LoadShader: %v", err)
	}
	if fake.created != 2 || fake.destroyed != 1 {
		t.Errorf("created=%d destroyed=%d, want 2 and 1", fake.created, fake.destroyed)
	}

	// A HAL failure is reported and keeps the current module.
	fake.failNext = true
	if err := p.LoadShader(validShader); err != nil {
		t.Fatalf("LoadShader: %v", err)
	}
	if len(reported) != 1 {
		t.Fatalf("reported %d errors, want 1", len(reported))
	}
	if fake.destroyed != 1 {
		t.Errorf("destroyed = %d after failure, want 1", fake.destroyed)
	}

	dev.Close()
	if fake.destroyed != 2 || fake.layouts != 0 {
		t.Errorf("Close: destroyed=%d layouts=%d", fake.destroyed, fake.layouts)
	}
	if dev.HasHAL() {
		t.Error("HasHAL after Close")
	}
}

func TestDeviceIgnoresNonHALProvider(t *testing.T) {
	dev, err := NewDevice(halHandle{dev: nil}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if dev.HasHAL() {
		t.Error("nil HalDevice should fall back to software")
	}
}
