package main

import (
	"os"

	"github.com/mjheller/icalscan/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
