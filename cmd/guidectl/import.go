package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/workguide/guide-server/internal/backup"
	"github.com/workguide/guide-server/internal/service"
)

var feedbackPolicy string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import tags, accounts, guides and feedback from a dataset",
	Long: `Import loads a dataset in dependency order. The file may be a JSON
document, a YAML document or a backup archive written by "guidectl export".

Tags, accounts and guides are matched against existing rows, so running the
same import twice creates nothing new. Feedback is appended unless
--feedback-policy=skip-duplicates is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := service.ParseFeedbackPolicy(feedbackPolicy)
		if err != nil {
			return err
		}

		ds, err := backup.Load(args[0])
		if err != nil {
			return err
		}

		return withContainer(func(injector do.Injector) error {
			importer := do.MustInvoke[*service.ImportService](injector)

			result, err := importer.ImportAll(cmd.Context(), *ds, service.ImportOptions{FeedbackPolicy: policy})
			if result != nil {
				printImportCounts(cmd, result.Counts)
			}
			return err
		})
	},
}

func printImportCounts(cmd *cobra.Command, c service.ImportCounts) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENTITY\tCREATED\tEXISTING\tSKIPPED")
	fmt.Fprintf(w, "tags\t%d\t%d\t%d\n", c.TagsCreated, c.TagsReused, c.TagsSkipped)
	fmt.Fprintf(w, "accounts\t%d\t%d\t%d\n", c.AccountsCreated, c.AccountsReused, c.AccountsSkipped)
	fmt.Fprintf(w, "guides\t%d\t%d\t-\n", c.GuidesCreated, c.GuidesUpdated)
	fmt.Fprintf(w, "feedback\t%d\t-\t%d\n", c.FeedbackImported, c.FeedbackSkipped+c.FeedbackDuplicates)
	w.Flush()
}

func init() {
	importCmd.Flags().StringVar(&feedbackPolicy, "feedback-policy", string(service.FeedbackAppend), "append or skip-duplicates")
	rootCmd.AddCommand(importCmd)
}
