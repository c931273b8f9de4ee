package main

import (
	_ "embed"

	"github.com/0xPolygon/edge-vault/command/root"
	"github.com/0xPolygon/edge-vault/licenses"
)

var (
	//go:embed LICENSE
	license string
)

func main() {
	licenses.SetLicense(license)

	root.NewRootCommand().Execute()
}
