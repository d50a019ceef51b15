package main

import (
	"os"

	creatormemcmder "github.com/papercomputeco/creatormem/cmd/creatormem"
)

func main() {
	cmd := creatormemcmder.NewCreatormemCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
