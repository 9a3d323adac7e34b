package l1cache

// Role identifies which core-facing requester a cache serves.
type Role int

// The two requester roles a single core exposes.
const (
	RoleInstruction Role = iota
	RoleData
)

func (r Role) String() string {
	switch r {
	case RoleInstruction:
		return "instruction"
	case RoleData:
		return "data"
	default:
		return "unknown"
	}
}
