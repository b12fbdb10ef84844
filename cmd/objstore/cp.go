package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cpCmd = &cobra.Command{
	Use:   "cp SRC DST",
	Short: "Copy an object server-side",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		move, _ := cmd.Flags().GetBool("move")

		var err error
		if move {
			_, err = store.Move(cmd.Context(), args[0], args[1])
		} else {
			_, err = store.Copy(cmd.Context(), args[0], args[1])
		}
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"src": args[0], "dst": args[1], "move": move}).Info("copied")
		return nil
	},
}

func init() {
	cpCmd.Flags().Bool("move", false, "delete the source after copying")
	rootCmd.AddCommand(cpCmd)
}
