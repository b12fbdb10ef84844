package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm KEY [KEY...]",
	Short: "Delete one or more objects",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			if _, err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			log.WithField("key", args[0]).Info("deleted")
			return nil
		}

		result, err := store.DeleteMany(cmd.Context(), args)
		if err != nil {
			return err
		}
		log.WithField("deleted", len(result.Deleted)).Info("batch delete finished")
		for _, e := range result.Errors {
			log.WithFields(logrus.Fields{
				"key":  e.Key,
				"code": e.Code,
			}).Error(e.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
