package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var presignCmd = &cobra.Command{
	Use:   "presign KEY",
	Short: "Generate a presigned URL for an object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		method, _ := cmd.Flags().GetString("method")
		expires, _ := cmd.Flags().GetDuration("expires")

		signed, err := store.Presign(strings.ToUpper(method), args[0], expires)
		if err != nil {
			return err
		}
		fmt.Println(signed)
		return nil
	},
}

func init() {
	presignCmd.Flags().String("method", http.MethodGet, "HTTP method the URL authorizes")
	presignCmd.Flags().Duration("expires", 15*time.Minute, "how long the URL stays valid")
	rootCmd.AddCommand(presignCmd)
}
