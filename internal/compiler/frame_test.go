package compiler_test

import (
	"testing"

	"github.com/nuua-io/nuua/internal/compiler"
)

func TestFrameInfoAllocatesSequentially(t *testing.T) {
	f := compiler.NewFrameInfo()
	r0 := f.GetRegister(false)
	r1 := f.GetRegister(false)
	if r0 != 0 || r1 != 1 {
		t.Fatalf("expected sequential registers 0,1, got %d,%d", r0, r1)
	}
	if f.Size() != 2 {
		t.Errorf("Size() = %d, want 2", f.Size())
	}
}

func TestFrameInfoReusesFreedRegisters(t *testing.T) {
	f := compiler.NewFrameInfo()
	r0 := f.GetRegister(false)
	f.FreeRegister(r0, false)
	r1 := f.GetRegister(false)
	if r1 != r0 {
		t.Errorf("expected freeing then allocating to reuse register %d, got %d", r0, r1)
	}
	if f.Size() != 1 {
		t.Errorf("Size() = %d, want 1 since the freed register was reused", f.Size())
	}
}

func TestFrameInfoProtectedRegisterSurvivesNonForcedFree(t *testing.T) {
	f := compiler.NewFrameInfo()
	r0 := f.GetRegister(true)
	f.FreeRegister(r0, false)
	r1 := f.GetRegister(false)
	if r1 == r0 {
		t.Errorf("expected a protected register not to be handed back without force=true")
	}
}

func TestFrameInfoProtectedRegisterFreedWithForce(t *testing.T) {
	f := compiler.NewFrameInfo()
	r0 := f.GetRegister(true)
	f.FreeRegister(r0, true)
	r1 := f.GetRegister(false)
	if r1 != r0 {
		t.Errorf("expected force=true to return the protected register to the free pool")
	}
}
