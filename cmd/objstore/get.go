package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore"
)

var getCmd = &cobra.Command{
	Use:   "get KEY [FILE]",
	Short: "Download an object, to a file or stdout",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]

		var opts []objectstore.GetOption
		if gz, _ := cmd.Flags().GetBool("decompress"); gz {
			opts = append(opts, objectstore.WithDecompression())
		}

		if len(args) == 2 {
			if err := store.DownloadFile(cmd.Context(), key, args[1], opts...); err != nil {
				return err
			}
			log.WithFields(logrus.Fields{"key": key, "file": args[1]}).Info("downloaded")
			return nil
		}

		r, err := store.NewReader(cmd.Context(), key, opts...)
		if err != nil {
			return err
		}
		defer r.Close()

		_, err = io.Copy(os.Stdout, r)
		return err
	},
}

func init() {
	getCmd.Flags().Bool("decompress", false, "decompress a gzip-encoded object")
	rootCmd.AddCommand(getCmd)
}
