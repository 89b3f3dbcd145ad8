package main

import (
	"github.com/spf13/cobra"

	"github.com/mossvale/easel"
)

func collapseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collapse <file>",
		Short: "Compact a document's history to its active branch, archiving the rest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := easel.OpenDocument(args[0])
			if err != nil {
				return err
			}
			before := doc.History.NumBranches()
			doc.History.Collapse()
			if err := doc.Save(); err != nil {
				return err
			}
			cmd.Printf("collapsed %d branches into 1 (%d archives total)\n",
				before, doc.History.NumArchives())
			return nil
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <file>",
		Short: "Create a new empty document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := easel.NewDocument()
			if err := doc.SaveAs(args[0]); err != nil {
				return err
			}
			cmd.Printf("created %s\n", args[0])
			return nil
		},
	}
}
