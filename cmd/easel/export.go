package main

import (
	"github.com/spf13/cobra"

	"github.com/mossvale/easel"
)

func exportCmd() *cobra.Command {
	var scale float64
	var configPath string

	cmd := &cobra.Command{
		Use:   "export <file> <out.png>",
		Short: "Render a document's current scene to a PNG",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := easel.LoadConfig(configPath)
			if err != nil {
				cmd.PrintErrln("warning: bad config, using defaults:", err)
			}
			if scale <= 0 {
				scale = cfg.ExportScale
			}
			doc, err := easel.OpenDocument(args[0])
			if err != nil {
				return err
			}
			if err := easel.ExportPNG(doc.State, args[1], easel.ExportOptions{Scale: scale}); err != nil {
				return err
			}
			cmd.Printf("exported %s (scale %g)\n", args[1], scale)
			return nil
		},
	}
	cmd.Flags().Float64Var(&scale, "scale", 0, "pixels per canvas unit (default from config)")
	cmd.Flags().StringVar(&configPath, "config", easel.DefaultConfigPath(), "config file path")
	return cmd
}
