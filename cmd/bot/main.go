package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{
		Use:           "dataeng-assistant",
		Short:         "Scripted data engineering assistant for Telegram and HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./configs/$APP_ENV.yaml)")
	root.PersistentFlags().StringVar(&catalogPath, "catalog", "", "knowledge catalog YAML (default is the built-in catalog)")

	root.AddCommand(serveCMD(), chatCMD(), migrateCMD(), topicsCMD(), leadsCMD(), workerCMD())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
