// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"
	"regexp"

	"github.com/gogpu/naga"
)

// Shader entry points the program must declare.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

var (
	vertexEntryRE   = regexp.MustCompile(`@vertex\s+fn\s+` + VertexEntry + `\b`)
	fragmentEntryRE = regexp.MustCompile(`@fragment\s+fn\s+` + FragmentEntry + `\b`)
)

// Program is a compiled shader program.
type Program struct {
	Source string
	SPIRV  []uint32
}

// Compile checks the entry points of a WGSL source and compiles it to
// SPIR-V.
func Compile(src string) (*Program, error) {
	if !vertexEntryRE.MatchString(src) {
		return nil, fmt.Errorf("%w: @vertex fn %s", ErrMissingEntryPoint, VertexEntry)
	}
	if !fragmentEntryRE.MatchString(src) {
		return nil, fmt.Errorf("%w: @fragment fn %s", ErrMissingEntryPoint, FragmentEntry)
	}

	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, err
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("spir-v size %d is not a multiple of 4", len(spirvBytes))
	}

	// SPIR-V words are little-endian.
	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return &Program{Source: src, SPIRV: spirv}, nil
}
