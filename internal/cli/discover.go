package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/medannot/internal/discovery"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find medannot servers on the local network",
	Long: `Query mDNS for servers started with "serve --advertise". Any URL printed
can be passed to --backend or stored as backend.url in the config.`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().Duration("timeout", 2*time.Second, "how long to wait for answers")
	discoverCmd.Flags().Bool("save", false, "store the first server found as the configured backend")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	servers, err := discovery.Browse(cmd.Context(), timeout)
	if err != nil {
		return err
	}
	if len(servers) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No servers found.")
		return nil
	}
	for _, s := range servers {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", s.URL(), s.Instance, strings.Join(s.Info, " "))
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		path, _ := cmd.Flags().GetString("config")
		cfg.Backend.URL = servers[0].URL()
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved backend %s to %s\n", cfg.Backend.URL, path)
	}
	return nil
}
