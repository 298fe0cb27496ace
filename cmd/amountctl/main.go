// Command amountctl computes settlement amounts of partially filled orders
// whose amounts move linearly over a validity window.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
