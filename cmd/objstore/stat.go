package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statCmd = &cobra.Command{
	Use:   "stat KEY",
	Short: "Show an object's metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		md, err := store.GetMetadata(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if md == nil {
			return fmt.Errorf("object %q not found", args[0])
		}

		fmt.Printf("Key:           %s\n", args[0])
		fmt.Printf("Size:          %d\n", md.Size)
		fmt.Printf("Content-Type:  %s\n", md.ContentType)
		fmt.Printf("ETag:          %s\n", md.ETag)
		fmt.Printf("Last-Modified: %s\n", md.LastModified)
		if md.ContentEncoding != "" {
			fmt.Printf("Encoding:      %s\n", md.ContentEncoding)
		}
		if md.StorageClass != "" {
			fmt.Printf("Storage-Class: %s\n", md.StorageClass)
		}
		if md.VersionID != "" {
			fmt.Printf("Version-ID:    %s\n", md.VersionID)
		}
		for k, v := range md.Metadata {
			fmt.Printf("Meta[%s]: %s\n", k, v)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statCmd)
}
