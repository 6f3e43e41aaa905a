package cmd

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serverURL string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "notectl",
	Short: "Operator tool for a notevault server",
	Long: `notectl talks to a running notevault server over its HTTP API.

It is meant for operators: checking that a node is healthy and
inspecting the replication link to its peer.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func httpClient() *http.Client {
	return &http.Client{Timeout: timeout}
}

func baseURL() string {
	return strings.TrimRight(serverURL, "/")
}

func init() {
	viper.AutomaticEnv()

	defaultServer := viper.GetString("notevault_server")
	if defaultServer == "" {
		defaultServer = "http://localhost:8420"
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "base URL of the notevault server")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(replicationCmd)
	replicationCmd.AddCommand(replicationStatusCmd)
}
