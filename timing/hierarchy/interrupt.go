package hierarchy

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/vulcansim/board"
)

// InterruptPlanKind tags how a core's interrupt ports must be wired.
type InterruptPlanKind int

const (
	// InterruptSelfContained means the core delivers interrupts
	// internally and no external routing is needed.
	InterruptSelfContained InterruptPlanKind = iota
	// InterruptRoutedThroughFabric means interrupt requests and responses
	// share the memory fabric with regular traffic.
	InterruptRoutedThroughFabric
)

// An InterruptPlan is the wiring decision for one core's interrupt ports.
// Req and Resp are only set for fabric-routed plans.
type InterruptPlan struct {
	Kind InterruptPlanKind
	Req  sim.Port
	Resp sim.Port
}

// InterruptPlanFor decides, per ISA kind, how a core's interrupt ports are
// wired. x86 delivers interrupts over the memory fabric; every other ISA
// delivers them inside the core.
func InterruptPlanFor(
	isa board.ISA,
	fabricReq, fabricResp sim.Port,
) InterruptPlan {
	switch isa {
	case board.ISAX86:
		return InterruptPlan{
			Kind: InterruptRoutedThroughFabric,
			Req:  fabricReq,
			Resp: fabricResp,
		}
	default:
		return InterruptPlan{Kind: InterruptSelfContained}
	}
}
