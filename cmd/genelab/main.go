package main

import (
	"genelab/internal/appshell"
	"genelab/internal/cli"
)

func main() {
	appshell.Main(cli.Run)
}
