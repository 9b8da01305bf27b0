package main

import "github.com/canopy-network/ballot/cmd/cli"

func main() {
	cli.Execute()
}
