package main

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/workguide/guide-server/internal/backup"
	"github.com/workguide/guide-server/internal/di/providers"
	"github.com/workguide/guide-server/internal/logger"
	"github.com/workguide/guide-server/internal/service"
)

// version is stamped into archive manifests.
var version = "dev"

var exportCmd = &cobra.Command{
	Use:   "export <file.zip>",
	Short: "Write every guide, tag, account and feedback note to an archive",
	Long: `Export writes a zip archive that "guidectl import" reads back. The file
is written next to the target and renamed into place once complete.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(injector do.Injector) error {
			storeHandle := do.MustInvoke[*providers.StoreHandle](injector)
			guides := do.MustInvoke[*service.GuideService](injector)
			log := do.MustInvoke[*logger.Logger](injector)

			exporter := backup.NewExporter(storeHandle.Store, guides, version, log.For("export"))
			manifest, err := exporter.ExportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			c := manifest.Counts
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d tags, %d accounts, %d guides, %d feedback notes\n",
				args[0], c.Tags, c.Accounts, c.Guides, c.Feedback)
			if manifest.Checksum != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "sha256 %s\n", manifest.Checksum)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
