package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"notevault/internal/domain/replication"
)

type healthResponse struct {
	Status      string             `json:"status"`
	Replication replication.Status `json:"replication"`
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the server is up",
	RunE: func(cmd *cobra.Command, _ []string) error {
		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, baseURL()+"/api/health", nil)
		if err != nil {
			return err
		}

		resp, err := httpClient().Do(req)
		if err != nil {
			return fmt.Errorf("server unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			fmt.Println(color.RedString("✗") + fmt.Sprintf(" Server responded with %s", resp.Status))
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		var health healthResponse
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			return fmt.Errorf("malformed health response: %w", err)
		}

		fmt.Println(color.GreenString("✓") + " Server is healthy: " + health.Status)
		printReplication(health.Replication)

		return nil
	},
}

func printReplication(st replication.Status) {
	if st.Peer == "" {
		fmt.Println("  Replication: standalone (no peer configured)")
		return
	}

	state := color.RedString("stopped")
	if st.Running {
		state = color.GreenString("running")
	}
	fmt.Printf("  Replication: %s, node %s, peer %s\n", state, color.YellowString(st.ServerName), st.Peer)

	if st.LastSyncTime != nil {
		fmt.Printf("  Last sync:   %s\n", st.LastSyncTime.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("  Last sync:   never")
	}
}
