package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mossvale/easel"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the history grid, pointer, and archives of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := easel.OpenDocument(args[0])
			if err != nil {
				return err
			}
			h := doc.History
			ptr := h.Pointer()

			cmd.Printf("%s: %d branches, %d entities at pointer\n",
				doc.Name(), h.NumBranches(), doc.State.NumEntities())
			for b := 0; b < h.NumBranches(); b++ {
				cmd.Printf("branch %d (%d nodes):\n", b, h.BranchLen(b))
				for t := 0; t < h.BranchLen(b); t++ {
					action, _ := h.Action(b, t)
					marker := "  "
					if b == ptr.Branch && t == ptr.Time {
						marker = "* "
					}
					cmd.Printf("  %s[%d] %s\n", marker, t, action)
				}
			}

			if n := h.NumArchives(); n > 0 {
				cmd.Printf("archives (%d):\n", n)
				for i := 0; i < n; i++ {
					ts, msg, branches, _ := h.ArchiveInfo(i)
					when := time.UnixMilli(ts).Format(time.RFC3339)
					cmd.Printf("  [%d] %s — %s (%d branches)\n", i, when, msg, branches)
				}
			}
			return nil
		},
	}
}

func entitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entities <file>",
		Short: "List live entities at the document's current pointer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := easel.OpenDocument(args[0])
			if err != nil {
				return err
			}
			doc.State.Each(func(e *easel.Entity) {
				w := e.World()
				flags := ""
				if e.Anchored {
					flags += " anchored"
				}
				if e.Selected {
					flags += " selected"
				}
				parent := e.ParentID
				if parent == "" {
					parent = "-"
				}
				label := e.Label
				if label == "" {
					label = e.Kind
				}
				cmd.Println(fmt.Sprintf("%s  %-12s local=(%g,%g) world=(%g,%g) parent=%s%s",
					e.ID, label, e.Local.X, e.Local.Y, w.X, w.Y, parent, flags))
			})
			return nil
		},
	}
}
