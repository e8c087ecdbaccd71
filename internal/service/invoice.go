package service

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// InvoiceGenerator issues invoice numbers. Numbers are unique across
// instances as long as every instance runs with its own node id, and are
// strictly increasing within one instance.
type InvoiceGenerator struct {
	prefix string
	node   *snowflake.Node
}

// NewInvoiceGenerator creates an InvoiceGenerator for the given node (0-1023).
func NewInvoiceGenerator(prefix string, nodeID int64) (*InvoiceGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("invoice node %d: %w", nodeID, err)
	}
	return &InvoiceGenerator{prefix: prefix, node: node}, nil
}

// Next returns a fresh invoice number. Safe for concurrent use.
func (g *InvoiceGenerator) Next() string {
	return g.prefix + g.node.Generate().String()
}
