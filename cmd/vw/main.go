package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"vaultwars/internal/app"
	"vaultwars/internal/config"
	"vaultwars/internal/database"
	"vaultwars/internal/database/migrations"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func readConfig() (*config.Config, error) {
	env, err := app.LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("resolving environment: %w", err)
	}

	cfg, err := config.ReadFromFile(env.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	env.Apply(cfg)
	return cfg, nil
}

// newApp reads the config and creates a VWApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "UseMove", "Credit").
func newApp(ctx context.Context, operation string) (*app.VWApp, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewVWApp(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// readPassphrase prompts on the terminal without echo. VW_PASSPHRASE
// overrides the prompt for scripted use.
func readPassphrase(prompt string) (string, error) {
	if p := os.Getenv("VW_PASSPHRASE"); p != "" {
		return p, nil
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

var rootCmd = &cobra.Command{
	Use:          "vw",
	Short:        "Vault economy and combat engine",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := app.LoadEnv()
		if err != nil {
			return fmt.Errorf("failed to resolve environment: %w", err)
		}

		playerID, _ := cmd.Flags().GetString("player")
		if playerID == "" {
			playerID = uuid.New().String()
		}

		cfg := config.NewConfig(playerID, env.BaseDir)
		if err := config.Init(env.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", env.ConfigPath)
		fmt.Printf("Player ID: %s\n", playerID)
		fmt.Printf("Base Dir:  %s\n", env.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Player ID:     %s\n", cfg.PlayerID)
		fmt.Printf("Base Dir:      %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:       %s\n", cfg.LogDir)
		fmt.Printf("Day boundary:  %02d:00 %s\n", cfg.Rules.BoundaryHour, cfg.Rules.Zone)
		fmt.Printf("Stacking:      %s\n", cfg.Rules.EffectStacking)
		fmt.Printf("Database:      %s\n", cfg.Database.Type)
		archive := cfg.Archive.Type
		if archive == "" {
			archive = "disabled"
		}
		fmt.Printf("Archive:       %s\n", archive)
		fmt.Printf("Seal:          %s\n", cfg.Seal.Type)
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the local store",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.PlayerID)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(); err != nil {
			return err
		}
		version, _, err := db.SchemaVersion()
		if err != nil {
			return err
		}
		fmt.Printf("Schema at version %d\n", version)
		return nil
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.PlayerID)
		if err != nil {
			return err
		}
		defer db.Close()

		version, dirty, err := db.SchemaVersion()
		if err != nil {
			return err
		}
		latest, err := migrations.LatestVersion()
		if err != nil {
			return err
		}
		fmt.Printf("Store:   %s\n", db.Path())
		fmt.Printf("Current: %d\n", version)
		fmt.Printf("Latest:  %d\n", latest)
		if dirty {
			fmt.Println("Schema is dirty: a migration failed part way")
		}
		return nil
	},
}

// seal command
var sealCmd = &cobra.Command{
	Use:   "seal",
	Short: "Manage snapshot encryption keys",
}

var sealInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the snapshot key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return fmt.Errorf("passphrases do not match")
		}
		if err := app.SetupSeal(cfg, pass); err != nil {
			return err
		}
		fmt.Printf("Keys written to %s\n", cfg.Seal.PublicKeyPath)
		return nil
	},
}

// archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage archived snapshots",
}

var archiveRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the local store with the archived snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		pass := ""
		if cfg.Seal.Type != "none" {
			if pass, err = readPassphrase("Passphrase: "); err != nil {
				return err
			}
		}
		version, err := app.RestoreFromArchive(cmd.Context(), cfg, pass)
		if err != nil {
			return err
		}
		fmt.Printf("Restored snapshot at operation #%d\n", version)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context(), "GetHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.GetHistory(limit)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				duration = op.FinishedAt.Sub(op.StartedAt).Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-20s  %s  %-8s  %-10s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Parameters,
			)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().String("player", "", "Player ID (default: random UUID)")
	configCmd.AddCommand(configListCmd)

	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)

	sealCmd.AddCommand(sealInitCmd)
	archiveCmd.AddCommand(archiveRestoreCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(sealCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
}
