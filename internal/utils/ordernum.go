package utils

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

func idNode() *snowflake.Node {
	nodeOnce.Do(func() {
		n, err := snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
		node = n
	})
	return node
}

// NewOrderNumber returns a unique, time-sortable order number.
func NewOrderNumber() string {
	return fmt.Sprintf("FP-%s", idNode().Generate())
}

// NewTransactionNumber returns a unique ledger transaction number.
func NewTransactionNumber() string {
	return fmt.Sprintf("TX-%s", idNode().Generate())
}
