package main

import (
	"fmt"
	"strconv"
	"time"

	"vaultwars/internal/vw"

	"github.com/spf13/cobra"
)

func printVault(v *vw.Vault) {
	fmt.Printf("Owner:       %s\n", v.OwnerID)
	fmt.Printf("Points:      %d / %d\n", v.CurrentPoints, v.Capacity)
	fmt.Printf("Truth metal: %d\n", v.TruthMetal)
	fmt.Printf("Shield:      %d / %d", v.ShieldStrength, v.MaxShieldStrength)
	if v.OvershieldCount > 0 {
		fmt.Printf("  (+%d overshield)", v.OvershieldCount)
	}
	fmt.Println()
	fmt.Printf("Health:      %d / %d", v.VaultHealth, v.MaxVaultHealth)
	if v.VaultHealthCooldownStart != nil {
		fmt.Printf("  (cooldown since %s)", v.VaultHealthCooldownStart.Format("2006-01-02 15:04"))
	}
	fmt.Println()
	if v.Firewall > 0 {
		fmt.Printf("Firewall:    %d\n", v.Firewall)
	}
	if v.DebtActive {
		fmt.Printf("Debt:        %d\n", v.DebtAmount)
	}
	fmt.Printf("Moves today: %d / %d\n", v.MovesRemainingToday, v.MaxMovesPerDay)
	fmt.Printf("Generator:   level %d, %d points and %d shields pending\n",
		v.GeneratorLevel, v.GeneratorPendingPoints, v.GeneratorPendingShields)
	if v.Boost != nil {
		fmt.Printf("Boost:       x%.2f from %s until %s\n",
			v.Boost.Multiplier, v.Boost.Source, v.Boost.ExpiresAt.Format("2006-01-02 15:04"))
	}
}

func intArg(s, name string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return n, nil
}

// vault command
var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Inspect vaults",
}

var vaultShowCmd = &cobra.Command{
	Use:   "show [PLAYER]",
	Short: "Show a vault (default: your own)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "ShowVault")
		if err != nil {
			return err
		}
		defer a.Close()

		owner := ""
		if len(args) > 0 {
			owner = args[0]
		}
		v, err := a.Vault(cmd.Context(), owner)
		if err != nil {
			return err
		}
		printVault(v)
		return nil
	},
}

var creditCmd = &cobra.Command{
	Use:   "credit POINTS",
	Short: "Add power points to your vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := intArg(args[0], "points")
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), "Credit")
		if err != nil {
			return err
		}
		defer a.Close()

		credited, err := a.Credit(cmd.Context(), points)
		if err != nil {
			return err
		}
		fmt.Printf("Credited %d point(s)\n", credited)
		return nil
	},
}

var debitCmd = &cobra.Command{
	Use:   "debit POINTS",
	Short: "Spend power points from your vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := intArg(args[0], "points")
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), "Debit")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Debit(cmd.Context(), points); err != nil {
			return err
		}
		fmt.Printf("Debited %d point(s)\n", points)
		return nil
	},
}

var truthMetalCmd = &cobra.Command{
	Use:   "truth-metal",
	Short: "Manage truth metal",
}

var truthMetalGrantCmd = &cobra.Command{
	Use:   "grant AMOUNT",
	Short: "Grant truth metal to your vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := intArg(args[0], "amount")
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), "GrantTruthMetal")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.GrantTruthMetal(cmd.Context(), amount); err != nil {
			return err
		}
		fmt.Printf("Granted %d truth metal\n", amount)
		return nil
	},
}

// generator command
var generatorCmd = &cobra.Command{
	Use:   "generator",
	Short: "Manage the vault generator",
}

var generatorStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show generator output",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "GeneratorStatus")
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.Service().GeneratorStatus(cmd.Context(), a.PlayerID())
		if err != nil {
			return err
		}
		fmt.Printf("Level:    %d (%d points, %d shields per day)\n", st.Level, st.Rate.PointsPerDay, st.Rate.ShieldsPerDay)
		fmt.Printf("Pending:  %d points, %d shields\n", st.PendingPoints, st.PendingShields)
		fmt.Printf("Progress: %.0f%%\n", st.Progress)
		fmt.Printf("Resets:   %s\n", st.NextBoundary.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

var generatorCollectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect pending generator output",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "CollectGenerator")
		if err != nil {
			return err
		}
		defer a.Close()

		points, shields, err := a.CollectGenerator(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Collected %d point(s) and %d shield(s)\n", points, shields)
		return nil
	},
}

var generatorUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the generator one level",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "UpgradeGenerator")
		if err != nil {
			return err
		}
		defer a.Close()

		level, cost, err := a.UpgradeGenerator(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Generator now level %d (cost %d)\n", level, cost)
		return nil
	},
}

// health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Manage vault health",
}

var healthRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Pay to restore vault health",
	RunE: func(cmd *cobra.Command, args []string) error {
		clearCooldown, _ := cmd.Flags().GetBool("clear-cooldown")

		a, err := newApp(cmd.Context(), "RestoreVaultHealth")
		if err != nil {
			return err
		}
		defer a.Close()

		restored, cost, err := a.RestoreVaultHealth(cmd.Context(), clearCooldown)
		if err != nil {
			return err
		}
		fmt.Printf("Restored %d health for %d point(s)\n", restored, cost)
		return nil
	},
}

var boostCmd = &cobra.Command{
	Use:   "boost MULTIPLIER DURATION",
	Short: "Activate a point multiplier (e.g. boost 2 1h)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mult, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid multiplier %q: %w", args[0], err)
		}
		d, err := time.ParseDuration(args[1])
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", args[1], err)
		}
		source, _ := cmd.Flags().GetString("source")

		a, err := newApp(cmd.Context(), "ActivateBoost")
		if err != nil {
			return err
		}
		defer a.Close()

		b, err := a.ActivateBoost(cmd.Context(), mult, d, source)
		if err != nil {
			return err
		}
		fmt.Printf("Boost x%.2f active until %s\n", b.Multiplier, b.ExpiresAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

// loan command
var loanCmd = &cobra.Command{
	Use:   "loan",
	Short: "Borrow and repay power points",
}

var loanTakeCmd = &cobra.Command{
	Use:   "take AMOUNT",
	Short: "Borrow points against your vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := intArg(args[0], "amount")
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), "TakeLoan")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.TakeLoan(cmd.Context(), amount); err != nil {
			return err
		}
		fmt.Printf("Borrowed %d point(s)\n", amount)
		return nil
	},
}

var loanRepayCmd = &cobra.Command{
	Use:   "repay AMOUNT",
	Short: "Repay outstanding debt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := intArg(args[0], "amount")
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), "RepayDebt")
		if err != nil {
			return err
		}
		defer a.Close()

		repaid, err := a.RepayDebt(cmd.Context(), amount)
		if err != nil {
			return err
		}
		fmt.Printf("Repaid %d point(s)\n", repaid)
		return nil
	},
}

func init() {
	vaultCmd.AddCommand(vaultShowCmd)
	truthMetalCmd.AddCommand(truthMetalGrantCmd)

	generatorCmd.AddCommand(generatorStatusCmd)
	generatorCmd.AddCommand(generatorCollectCmd)
	generatorCmd.AddCommand(generatorUpgradeCmd)

	healthCmd.AddCommand(healthRestoreCmd)
	healthRestoreCmd.Flags().Bool("clear-cooldown", false, "Also end an active health cooldown")

	boostCmd.Flags().String("source", "manual", "Where the boost came from")

	loanCmd.AddCommand(loanTakeCmd)
	loanCmd.AddCommand(loanRepayCmd)

	rootCmd.AddCommand(vaultCmd)
	rootCmd.AddCommand(creditCmd)
	rootCmd.AddCommand(debitCmd)
	rootCmd.AddCommand(truthMetalCmd)
	rootCmd.AddCommand(generatorCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(boostCmd)
	rootCmd.AddCommand(loanCmd)
}
