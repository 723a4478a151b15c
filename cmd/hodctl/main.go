package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-hod-api/pkg/config"
)

type globalFlags struct {
	department string
	apiURL     string
	apiToken   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:          "hodctl",
		Short:        "Operate head-of-department dashboard data offline",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.department, "department", "d", "MATH", "department code")
	rootCmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "school API base URL (defaults to SCHOOL_API_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&flags.apiToken, "api-token", "", "school API bearer token (defaults to SCHOOL_API_TOKEN)")

	rootCmd.AddCommand(simulateCmd(flags))
	rootCmd.AddCommand(reportCmd(flags))
	rootCmd.AddCommand(snapshotCmd(flags))
	return rootCmd
}

// schoolAPIConfig merges flag overrides over the environment configuration.
func (f *globalFlags) schoolAPIConfig() (config.SchoolAPIConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.SchoolAPIConfig{}, err
	}
	api := cfg.SchoolAPI
	if f.apiURL != "" {
		api.BaseURL = f.apiURL
	}
	if f.apiToken != "" {
		api.Token = f.apiToken
	}
	return api, nil
}
