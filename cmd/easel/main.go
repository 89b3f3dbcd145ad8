package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "easel",
		Short: "Inspect and transform easel canvas documents",
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(initCmd())
	root.AddCommand(inspectCmd())
	root.AddCommand(entitiesCmd())
	root.AddCommand(collapseCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
