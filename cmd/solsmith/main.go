package main

import (
	"os"

	"github.com/OpenDotSo/solidity/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
