package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/baton-remote/baton/internal/discovery"
	"github.com/baton-remote/baton/internal/errors"
	"github.com/baton-remote/baton/internal/remote"
)

var connectToken string

var connectCmd = &cobra.Command{
	Use:   "connect [address]",
	Short: "Pair with an Apple Music Remote server",
	Long: `Find an Apple Music Remote server and store its address and token.

Without an address, the local network is searched via mDNS. The
token is the one shown by the desktop server on startup.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConnect,
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List servers on the local network",
	RunE:  runDiscover,
}

func init() {
	connectCmd.Flags().StringVarP(&connectToken, "token", "t", "", "server auth token (prompted if omitted)")
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(discoverCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if len(args) > 0 {
		return connectTo(ctx, args[0])
	}

	fmt.Println("Searching for servers...")
	address, err := pickServer(ctx)
	if err != nil {
		return err
	}
	return connectTo(ctx, address)
}

// pickServer browses the local network and lets the user choose when
// more than one server answers.
func pickServer(ctx context.Context) (string, error) {
	servers, err := discovery.Browse(ctx, discoveryTimeout())
	if err != nil {
		return "", fmt.Errorf("discovery failed: %w", err)
	}
	if len(servers) == 0 {
		return "", errors.WithSuggestion(
			fmt.Errorf("no servers found on the local network"),
			"Make sure the desktop server is running, or pass the address directly: baton connect host:port")
	}
	if len(servers) == 1 {
		fmt.Printf("Found %s at %s\n", servers[0].Name, servers[0].Address)
		return servers[0].Address, nil
	}

	var options []huh.Option[string]
	for _, s := range servers {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", s.Name, s.Address), s.Address))
	}

	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select a server").
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return selected, nil
}

func connectTo(ctx context.Context, address string) error {
	// Liveness check before asking for credentials.
	probe, err := remote.New(address, "")
	if err != nil {
		return err
	}
	if err := probe.Ping(ctx); err != nil {
		return fmt.Errorf("server at %s is not responding: %w", address, err)
	}

	token := connectToken
	if token == "" {
		token, err = promptToken()
		if err != nil {
			return err
		}
	}

	client, err := remote.New(address, token)
	if err != nil {
		return err
	}

	// Verify the token against an authenticated endpoint.
	if _, err := client.Status(ctx); err != nil {
		return fmt.Errorf("token rejected: %w", err)
	}

	cfg.Server.Address = client.BaseURL()
	cfg.Server.Token = token

	name, fingerprint, err := deviceIdentity()
	if err != nil {
		return err
	}
	if err := client.RegisterDevice(ctx, fingerprint, name); err != nil {
		// Registration is a convenience; pairing still succeeded.
		fmt.Fprintf(os.Stderr, "warning: device registration failed: %v\n", err)
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status":  "connected",
			"address": cfg.Server.Address,
			"device":  name,
		})
	} else {
		fmt.Printf("Connected to %s\n", cfg.Server.Address)
		fmt.Println("Try 'baton status' or 'baton ui'")
	}

	return nil
}

func promptToken() (string, error) {
	fmt.Print("Server token: ")
	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	var token string
	if _, err := fmt.Scanln(&token); err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(token), nil
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	servers, err := discovery.Browse(ctx, discoveryTimeout())
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if JSONOutput() {
		out := make([]map[string]interface{}, 0, len(servers))
		for _, s := range servers {
			out = append(out, map[string]interface{}{
				"name":    s.Name,
				"host":    s.Host,
				"port":    s.Port,
				"address": s.Address,
			})
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	if len(servers) == 0 {
		fmt.Println("No servers found")
		return nil
	}

	table := NewTable("NAME", "ADDRESS")
	for _, s := range servers {
		table.Row(s.Name, s.Address)
	}
	table.Flush()

	return nil
}
