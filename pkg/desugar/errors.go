package desugar

import (
	"fmt"

	"github.com/leapstack-labs/leaplua/pkg/core"
)

// NodeError reports a source node the desugarer cannot handle. Like
// lower.InvariantError it means the front end and the engine disagree,
// and it aborts the compile unit.
type NodeError struct {
	Node   core.Node
	Reason string
}

func (e *NodeError) Error() string {
	if e.Node == nil {
		return e.Reason + " (<nil>)"
	}
	return fmt.Sprintf("%s: %s (%T)", e.Node.Pos(), e.Reason, e.Node)
}

func unknownNode(n core.Node) error {
	return &NodeError{Node: n, Reason: "unhandled source node"}
}

func invalidTarget(n core.Node) error {
	return &NodeError{Node: n, Reason: "invalid assignment target"}
}
