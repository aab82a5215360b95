package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tristar/fitness-hub/internal/config"
	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/logger"
	"tristar/fitness-hub/internal/remote"
	"tristar/fitness-hub/internal/replica"
)

// cli holds the resolved settings shared by every command.
type cli struct {
	cfg config.ClientConfig
	log *zap.Logger

	dbPath        string
	remoteURL     string
	remoteToken   string
	remoteTimeout time.Duration
	logLevel      string
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "tristar-client",
		Short:         "tristar-client works on a local replica of the TriStar Fitness records",
		Long:          "tristar-client keeps a local, offline-capable copy of the gym records and pulls from the Record Store when it is reachable.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.resolve(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.dbPath, "db", "", "Path to the replica database (TRISTAR_DB_PATH)")
	flags.StringVar(&c.remoteURL, "remote", "", "Record Store base URL (TRISTAR_REMOTE_URL)")
	flags.StringVar(&c.remoteToken, "token", "", "Bearer token for the Record Store (TRISTAR_REMOTE_TOKEN)")
	flags.DurationVar(&c.remoteTimeout, "timeout", 0, "Record Store request timeout (TRISTAR_REMOTE_TIMEOUT)")
	flags.StringVar(&c.logLevel, "log-level", "", "Log level (TRISTAR_LOG_LEVEL)")

	root.AddCommand(
		newBootstrapCmd(c),
		newSyncCmd(c),
		newMembersCmd(c),
		newInvoicesCmd(c),
		newFollowUpsCmd(c),
		newTrainersCmd(c),
		newVisitorsCmd(c),
		newActivitiesCmd(c),
		newExpireCmd(c),
		newExportCmd(c),
		newImportCmd(c),
		newPricingCmd(c),
		newTermsCmd(c),
		newNextInvoiceIDCmd(c),
		newResetCmd(c),
	)
	return root
}

// resolve reads the environment and lets explicitly set flags win over it.
func (c *cli) resolve(cmd *cobra.Command) error {
	cfg, err := config.LoadClientConfig(".env")
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = c.dbPath
	}
	if flags.Changed("remote") {
		cfg.RemoteURL = c.remoteURL
	}
	if flags.Changed("token") {
		cfg.RemoteToken = c.remoteToken
	}
	if flags.Changed("timeout") {
		if c.remoteTimeout <= 0 {
			return fmt.Errorf("--timeout must be positive")
		}
		cfg.RemoteTimeout = c.remoteTimeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	c.cfg = cfg

	c.log, err = logger.New(cfg.LogLevel, "stderr")
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	return nil
}

// withReplica opens the replica for the duration of run.
func (c *cli) withReplica(cmd *cobra.Command, run func(ctx context.Context, r *replica.Replica) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := replica.OpenSQLite(c.cfg.DBPath)
	if err != nil {
		return err
	}
	r, err := replica.Open(ctx, store, replica.Options{Logger: c.log})
	if err != nil {
		_ = store.Close()
		return err
	}
	defer r.Close()
	return run(ctx, r)
}

func (c *cli) recordStore() *remote.Client {
	return remote.New(c.cfg.RemoteURL, c.cfg.RemoteToken, c.cfg.RemoteTimeout, c.log)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseDate accepts YYYY-MM-DD or RFC 3339. Empty input yields the zero time.
func parseDate(name, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(domain.DateLayout, value, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q (expected YYYY-MM-DD)", name, value)
	}
	return t.UTC(), nil
}

func optional(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(domain.DateLayout)
}
