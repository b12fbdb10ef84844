package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore"
)

var syncCmd = &cobra.Command{
	Use:   "sync DIR [PREFIX]",
	Short: "Mirror a local directory to the bucket",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var prefix string
		if len(args) == 2 {
			prefix = args[1]
		}

		var opts []objectstore.SyncOption
		if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
			opts = append(opts, objectstore.WithDryRun())
		}
		if del, _ := cmd.Flags().GetBool("delete"); del {
			opts = append(opts, objectstore.WithDeleteExtra())
		}

		result, err := store.SyncDirectory(cmd.Context(), args[0], prefix, opts...)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"uploaded": result.FilesUploaded,
			"skipped":  result.FilesSkipped,
			"deleted":  result.FilesDeleted,
			"bytes":    result.BytesUploaded,
		}).Info("sync finished")
		return nil
	},
}

func init() {
	syncCmd.Flags().Bool("dry-run", false, "plan without transferring or deleting")
	syncCmd.Flags().Bool("delete", false, "remove remote objects with no local counterpart")
	rootCmd.AddCommand(syncCmd)
}
