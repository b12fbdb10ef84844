package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore"
)

var putCmd = &cobra.Command{
	Use:   "put KEY FILE",
	Short: "Upload a local file to the bucket",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, path := args[0], args[1]

		var opts []objectstore.PutOption
		if ct, _ := cmd.Flags().GetString("content-type"); ct != "" {
			opts = append(opts, objectstore.WithContentType(ct))
		}
		if meta, _ := cmd.Flags().GetString("metadata"); meta != "" {
			opts = append(opts, objectstore.WithMetadata(parseKeyValue(meta)))
		}
		if gz, _ := cmd.Flags().GetBool("gzip"); gz {
			opts = append(opts, objectstore.WithCompression())
		}
		if excl, _ := cmd.Flags().GetBool("if-none-match"); excl {
			opts = append(opts, objectstore.WithIfNoneMatch())
		}

		md, err := store.UploadFile(cmd.Context(), key, path, opts...)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"key":  key,
			"size": md.Size,
			"etag": md.ETag,
		}).Info("uploaded")
		return nil
	},
}

func init() {
	putCmd.Flags().String("content-type", "", "override the detected content type")
	putCmd.Flags().String("metadata", "", "custom metadata as k1=v1,k2=v2")
	putCmd.Flags().Bool("gzip", false, "compress the payload before upload")
	putCmd.Flags().Bool("if-none-match", false, "fail if the key already exists")
	rootCmd.AddCommand(putCmd)
}
