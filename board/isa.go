package board

import "fmt"

// ISA identifies the instruction set architecture of the processor.
type ISA int

// The ISA kinds the hierarchy knows how to wire.
const (
	ISAUnknown ISA = iota
	ISAX86
	ISAArm
	ISARiscV
)

func (i ISA) String() string {
	switch i {
	case ISAX86:
		return "x86"
	case ISAArm:
		return "arm"
	case ISARiscV:
		return "riscv"
	default:
		return "unknown"
	}
}

// ParseISA converts a configuration string into an ISA kind.
func ParseISA(s string) (ISA, error) {
	switch s {
	case "x86":
		return ISAX86, nil
	case "arm":
		return ISAArm, nil
	case "riscv":
		return ISARiscV, nil
	default:
		return ISAUnknown, fmt.Errorf("unknown isa %q", s)
	}
}
