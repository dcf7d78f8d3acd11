package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/baton-remote/baton/internal/errors"
	"github.com/baton-remote/baton/internal/logging"
	"github.com/baton-remote/baton/internal/remote"
	"github.com/baton-remote/baton/internal/state"
)

// newClient builds a remote client from the loaded config.
func newClient() (*remote.Client, error) {
	if cfg.Server.Address == "" {
		return nil, errors.WithSuggestion(
			fmt.Errorf("no server configured"),
			"Run 'baton connect' to find and pair with a server")
	}

	opts := []remote.Option{}
	if cfg.Server.TimeoutSeconds > 0 {
		opts = append(opts, remote.WithTimeout(time.Duration(cfg.Server.TimeoutSeconds)*time.Second))
	}
	if verbose {
		opts = append(opts, remote.WithLogger(logging.New(cfg.Log)))
	}

	return remote.New(cfg.Server.Address, cfg.Server.Token, opts...)
}

// newReconciler builds a reconciler over the push channel for commands
// that follow live state (tail, ui).
func newReconciler(client *remote.Client) *state.Reconciler {
	dial := func(ctx context.Context) <-chan remote.Signal {
		push := remote.NewPushChannel(client)
		go func() { _ = push.Run(ctx) }()
		return push.Signals()
	}

	opts := []state.Option{}
	if verbose {
		opts = append(opts, state.WithLogger(logging.New(cfg.Log)))
	}

	return state.New(client, dial, opts...)
}

// commandContext returns a context bounded by the configured timeout.
func commandContext() (context.Context, context.CancelFunc) {
	timeout := remote.DefaultTimeout
	if cfg.Server.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// deviceIdentity returns this client's trusted-device name and
// fingerprint, generating and persisting them on first use.
func deviceIdentity() (name, fingerprint string, err error) {
	if cfg.Device.Fingerprint != "" {
		return cfg.Device.Name, cfg.Device.Fingerprint, nil
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "baton"
	}

	sum := sha256.Sum256([]byte(hostname + ":" + uuid.NewString()))
	cfg.Device.Name = hostname
	cfg.Device.Fingerprint = hex.EncodeToString(sum[:])

	if err := cfg.Save(); err != nil {
		return "", "", fmt.Errorf("failed to save device identity: %w", err)
	}
	return cfg.Device.Name, cfg.Device.Fingerprint, nil
}

// discoveryTimeout returns the configured mDNS browse window.
func discoveryTimeout() time.Duration {
	if cfg.Server.DiscoveryTimeout > 0 {
		return time.Duration(cfg.Server.DiscoveryTimeout) * time.Second
	}
	return 5 * time.Second
}
