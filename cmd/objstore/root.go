// Root of command-line argument parsing.
// This file was based off the standard cobra template, see
// https://github.com/spf13/cobra
package main

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore"
)

var (
	cfgFile string
	verbose bool

	cfg   *viper.Viper
	log   = logrus.New()
	store *objectstore.Store
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "objstore",
	Short: "Work with S3-compatible object storage",
	Long: `A CLI for S3-compatible object stores (AWS S3, MinIO, Ceph RGW, R2).
Connection settings come from flags, a config file, or OBJSTORE_* environment
variables, in that order of precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
		if err := initConfig(cmd.Root().PersistentFlags()); err != nil {
			return err
		}

		var err error
		store, err = objectstore.New(objectstore.Config{
			Endpoint:        cfg.GetString("endpoint"),
			Region:          cfg.GetString("region"),
			Bucket:          cfg.GetString("bucket"),
			AccessKeyID:     cfg.GetString("access-key"),
			SecretAccessKey: cfg.GetString("secret-key"),
			SessionToken:    cfg.GetString("session-token"),
			ForcePathStyle:  cfg.GetBool("path-style"),
			Timeout:         cfg.GetDuration("timeout"),
			MaxRetries:      cfg.GetInt("max-retries"),
		})
		return err
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main() and only needs to happen once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func initConfig(flags *pflag.FlagSet) error {
	// A private viper context so we never collide with an importer's globals.
	cfg = viper.New()

	cfg.SetDefault("region", "us-east-1")
	cfg.SetDefault("timeout", 30*time.Second)
	cfg.SetDefault("max-retries", 3)

	cfg.SetEnvPrefix("OBJSTORE")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cfg.AutomaticEnv()

	if err := cfg.BindPFlags(flags); err != nil {
		return err
	}

	if cfgFile != "" {
		cfg.SetConfigFile(cfgFile)
		if err := cfg.ReadInConfig(); err != nil {
			return err
		}
		log.WithField("config", cfg.ConfigFileUsed()).Debug("loaded config file")
	} else {
		cfg.AddConfigPath(".")
		cfg.AddConfigPath("$HOME/.objstore")
		cfg.SetConfigName("objstore")
		// Missing default config is fine; flags and env may be enough.
		if err := cfg.ReadInConfig(); err == nil {
			log.WithField("config", cfg.ConfigFileUsed()).Debug("loaded config file")
		}
	}
	return nil
}

func parseKeyValue(s string) map[string]string {
	if s == "" {
		return nil
	}
	result := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		keyValue := strings.SplitN(pair, "=", 2)
		if len(keyValue) == 2 {
			result[keyValue[0]] = keyValue[1]
		}
	}
	return result
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./objstore.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.String("endpoint", "", "provider endpoint, e.g. s3.amazonaws.com or http://localhost:9000")
	pf.String("region", "us-east-1", "signing region")
	pf.String("bucket", "", "bucket name")
	pf.String("access-key", "", "access key ID")
	pf.String("secret-key", "", "secret access key")
	pf.String("session-token", "", "session token for temporary credentials")
	pf.Bool("path-style", false, "use path-style addressing instead of virtual-host")
	pf.Duration("timeout", 30*time.Second, "per-request timeout")
	pf.Int("max-retries", 3, "retry budget for transient failures (negative disables)")
}
