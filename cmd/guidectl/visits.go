package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/workguide/guide-server/internal/service"
)

var visitsCmd = &cobra.Command{
	Use:   "visits",
	Short: "Report visit counts per guide",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(injector do.Injector) error {
			visits := do.MustInvoke[*service.VisitService](injector)

			stats, err := visits.StatsByGuide(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "GUIDE\tVISITS\tUSERS\tLAST VISIT")
			for _, s := range stats {
				last := "-"
				if s.LastVisit != nil {
					last = s.LastVisit.Local().Format(time.DateTime)
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", s.Guide.Title, s.VisitCount, s.UniqueUserCount, last)
			}
			return w.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(visitsCmd)
}
