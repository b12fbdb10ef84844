package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore"
)

var lsCmd = &cobra.Command{
	Use:   "ls [PREFIX]",
	Short: "List objects in the bucket",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var prefix string
		if len(args) == 1 {
			prefix = args[0]
		}

		opts := []objectstore.ListOption{objectstore.WithPrefix(prefix)}
		if grouped, _ := cmd.Flags().GetBool("dirs"); grouped {
			opts = append(opts, objectstore.WithDelimiter("/"))
		}

		for {
			page, err := store.List(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			for _, p := range page.CommonPrefixes {
				fmt.Printf("%26s  %s\n", "DIR", p)
			}
			for _, obj := range page.Objects {
				fmt.Printf("%s  %9d  %s\n",
					obj.LastModified.Format("2006-01-02 15:04:05"), obj.Size, obj.Key)
			}
			if !page.IsTruncated {
				return nil
			}
			opts = []objectstore.ListOption{
				objectstore.WithPrefix(prefix),
				objectstore.WithContinuationToken(page.NextContinuationToken),
			}
		}
	},
}

func init() {
	lsCmd.Flags().Bool("dirs", false, "group keys by / into directory-style listing")
	rootCmd.AddCommand(lsCmd)
}
