// The discount-function binary is the checkout-time pricing computation: it
// reads one cart snapshot as JSON on stdin and writes the discount
// operations as JSON on stdout. The checkout runtime invokes it once per
// pricing pass; it must stay pure and side-effect free.
package main

import (
	"encoding/json"
	"log"
	"os"

	"freegift/internal/discountfn"
)

func main() {
	logger := log.New(os.Stderr, "[discount-function] ", 0)

	var input discountfn.Input
	if err := json.NewDecoder(os.Stdin).Decode(&input); err != nil {
		logger.Fatalf("decode input: %v", err)
	}

	output := discountfn.Run(input)

	if err := json.NewEncoder(os.Stdout).Encode(output); err != nil {
		logger.Fatalf("encode output: %v", err)
	}
}
