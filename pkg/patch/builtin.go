package patch

import (
	"bytes"

	"github.com/joshuapare/tzpatch/pkg/sig"
)

// NOP is the x86 no-operation opcode.
const NOP byte = 0x90

// NOPs returns n no-op bytes.
func NOPs(n int) []byte {
	return bytes.Repeat([]byte{NOP}, n)
}

// TrainzExe neutralizes the check in trainz.exe that refuses to load the
// SpeedTree plugin. Fourteen bytes following "ret 8; push 8" are replaced
// with NOPs.
func TrainzExe() Patch {
	return Patch{
		Name:        "trainz.exe",
		Signature:   sig.Exact(0xC2, 0x08, 0x00, 0x6A, 0x08),
		Delta:       3,
		Replacement: NOPs(14),
	}
}

// NativeInterfaceDLL makes the plugin-enabled query in
// trainznativeinterface.dll return true unconditionally (mov al,1; ret; nop).
func NativeInterfaceDLL() Patch {
	return Patch{
		Name:        "trainznativeinterface.dll",
		Signature:   sig.Exact(0x8B, 0x44, 0x24, 0x04, 0x8B, 0x40, 0x1C, 0x85, 0xC0, 0x75),
		Delta:       7,
		Replacement: []byte{0xB0, 0x01, 0xC3, 0x90},
	}
}
