package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"notevault/internal/domain/replication"
)

var internalSecret string

type internalHealthResponse struct {
	Status     string             `json:"status"`
	ServerName string             `json:"server_name"`
	Engine     replication.Status `json:"replication"`
}

var replicationCmd = &cobra.Command{
	Use:   "replication",
	Short: "Inspect the replication link",
}

var replicationStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the replication engine state of a node",
	Long: `Queries the peer-facing health endpoint. The endpoint is guarded by
the shared internal secret, the same one the nodes use between
themselves. Pass it via --secret or the INTERNAL_SECRET variable.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if internalSecret == "" {
			internalSecret = viper.GetString("internal_secret")
		}
		if internalSecret == "" {
			return fmt.Errorf("internal secret required: use --secret or set INTERNAL_SECRET")
		}

		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, baseURL()+"/api/internal/health", nil)
		if err != nil {
			return err
		}
		req.Header.Set(replication.HeaderInternalSecret, internalSecret)

		resp, err := httpClient().Do(req)
		if err != nil {
			return fmt.Errorf("server unreachable: %w", err)
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
		case http.StatusForbidden:
			return fmt.Errorf("rejected: wrong internal secret")
		default:
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		var health internalHealthResponse
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			return fmt.Errorf("malformed response: %w", err)
		}

		fmt.Println(color.GreenString("✓") + " Node " + color.YellowString(health.ServerName))
		printReplication(health.Engine)

		return nil
	},
}

func init() {
	replicationStatusCmd.Flags().StringVar(&internalSecret, "secret", "", "shared internal secret")
}
