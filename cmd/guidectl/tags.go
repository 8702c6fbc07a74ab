package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/workguide/guide-server/internal/service"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Inspect and maintain the tag registry",
}

var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(injector do.Injector) error {
			tags := do.MustInvoke[*service.TagService](injector)

			list, err := tags.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tNAME")
			for _, t := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Kind, t.Name)
			}
			return w.Flush()
		})
	},
}

var tagsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a tag that no guide references",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(injector do.Injector) error {
			tags := do.MustInvoke[*service.TagService](injector)

			if err := tags.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tag deleted: %s\n", args[0])
			return nil
		})
	},
}

func init() {
	tagsCmd.AddCommand(tagsListCmd, tagsDeleteCmd)
	rootCmd.AddCommand(tagsCmd)
}
