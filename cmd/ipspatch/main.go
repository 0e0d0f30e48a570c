package main

import (
	"context"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
)

func main() {
	e, err := loadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ipspatch:", err)
		os.Exit(2)
	}
	cli.MainContext(context.Background(), Root(e))
}
