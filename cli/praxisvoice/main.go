package main

import (
	"os"

	praxisvoicecmder "github.com/papercomputeco/praxisvoice/cmd/praxisvoice"
)

func main() {
	cmd := praxisvoicecmder.NewPraxisvoiceCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
