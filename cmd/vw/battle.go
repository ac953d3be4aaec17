package main

import (
	"fmt"
	"strings"

	"vaultwars/internal/vw"

	"github.com/spf13/cobra"
)

func printResult(r *vw.MoveResult) {
	target := r.TargetID
	if target == "" || target == r.CasterID {
		target = "self"
	}
	fmt.Printf("%s -> %s (cost %d)\n", r.Action, target, r.Cost)

	switch {
	case r.Nullified:
		fmt.Println("  blocked by firewall")
		return
	case r.Absorbed:
		fmt.Println("  absorbed by overshield")
		return
	}

	lines := []struct {
		label string
		n     int
	}{
		{"damage", r.Damage},
		{"shield damage", r.ShieldDamage},
		{"health damage", r.HealthDamage},
		{"points drained", r.PointsDrained},
		{"points stolen", r.PointsStolen},
		{"healing", r.Healing},
		{"shield boost", r.ShieldBoost},
	}
	for _, l := range lines {
		if l.n != 0 {
			fmt.Printf("  %-15s %d\n", l.label, l.n)
		}
	}
	for _, e := range r.Applied {
		fmt.Printf("  applied %s %d for %d turn(s)\n", e.Type, e.Strength, e.DurationTurns)
	}
	for _, e := range r.Cleansed {
		fmt.Printf("  cleansed %s\n", e.Type)
	}
}

func targetFlag(cmd *cobra.Command) string {
	t, _ := cmd.Flags().GetString("target")
	return t
}

// move command
var moveCmd = &cobra.Command{
	Use:   "move",
	Short: "Use and manage moves",
}

var moveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog moves and your progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "ListMoves")
		if err != nil {
			return err
		}
		defer a.Close()

		l, err := a.Service().Loadout(cmd.Context(), a.PlayerID())
		if err != nil {
			return err
		}
		cat := a.Service().Catalog()
		for _, name := range cat.MoveNames() {
			tmpl, _ := cat.Move(name)
			state := "locked"
			if st, ok := l.Moves[name]; ok && st.Unlocked {
				state = fmt.Sprintf("mastery %d", st.MasteryLevel)
				if st.CurrentCooldown > 0 {
					state += fmt.Sprintf(", cooldown %d", st.CurrentCooldown)
				}
			}
			fmt.Printf("%-16s %-8s %-10s cost %-4d %s\n", name, tmpl.Category, tmpl.Type, tmpl.Cost, state)
		}
		return nil
	},
}

var moveUnlockCmd = &cobra.Command{
	Use:   "unlock MOVE",
	Short: "Unlock a catalog move",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "UnlockMove")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.UnlockMove(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Unlocked %s\n", args[0])
		return nil
	},
}

var moveUseCmd = &cobra.Command{
	Use:   "use MOVE",
	Short: "Use a move against --target or yourself",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "UseMove")
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.UseMove(cmd.Context(), args[0], targetFlag(cmd))
		if err != nil {
			return err
		}
		printResult(r)
		return nil
	},
}

var moveMasterCmd = &cobra.Command{
	Use:   "master MOVE",
	Short: "Raise the mastery level of a move",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "UpgradeMoveMastery")
		if err != nil {
			return err
		}
		defer a.Close()

		level, err := a.UpgradeMoveMastery(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s now at mastery %d\n", args[0], level)
		return nil
	},
}

// card command
var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Cast and manage action cards",
}

var cardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog cards and your progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "ListCards")
		if err != nil {
			return err
		}
		defer a.Close()

		l, err := a.Service().Loadout(cmd.Context(), a.PlayerID())
		if err != nil {
			return err
		}
		cat := a.Service().Catalog()
		for _, name := range cat.CardNames() {
			tmpl, _ := cat.Card(name)
			state := "locked"
			if st, ok := l.Cards[name]; ok && st.Unlocked {
				state = fmt.Sprintf("mastery %d, %d/%d uses", st.MasteryLevel, st.UsesRemaining, tmpl.MaxUses)
			}
			fmt.Printf("%-14s %-13s %s\n", name, tmpl.Effect.Type, state)
		}
		return nil
	},
}

var cardUnlockCmd = &cobra.Command{
	Use:   "unlock CARD",
	Short: "Unlock a catalog card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "UnlockCard")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.UnlockCard(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Unlocked %s\n", args[0])
		return nil
	},
}

var cardCastCmd = &cobra.Command{
	Use:   "cast CARD",
	Short: "Cast a card against --target or yourself",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "CastCard")
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.CastCard(cmd.Context(), args[0], targetFlag(cmd))
		if err != nil {
			return err
		}
		printResult(r)
		return nil
	},
}

var cardResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Refill the uses of every unlocked card",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "ResetCards")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ResetCards(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Card uses refilled")
		return nil
	},
}

var cardMasterCmd = &cobra.Command{
	Use:   "master CARD",
	Short: "Raise the mastery level of a card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "UpgradeCardMastery")
		if err != nil {
			return err
		}
		defer a.Close()

		level, err := a.UpgradeCardMastery(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s now at mastery %d\n", args[0], level)
		return nil
	},
}

var turnCmd = &cobra.Command{
	Use:   "turn",
	Short: "Begin your next turn",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "StartTurn")
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.StartTurn(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Turn %d: burned %d, healed %d\n", r.Turn, r.Burned, r.Healed)
		if len(r.Expired) > 0 {
			names := make([]string, len(r.Expired))
			for i, e := range r.Expired {
				names[i] = e.Type
			}
			fmt.Printf("Expired: %s\n", strings.Join(names, ", "))
		}
		return nil
	},
}

var siegeCmd = &cobra.Command{
	Use:   "siege",
	Short: "Inspect siege attacks",
}

var siegeHistoryCmd = &cobra.Command{
	Use:   "history [PLAYER]",
	Short: "List attacks on a vault (default: your own)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context(), "SiegeHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		owner := ""
		if len(args) > 0 {
			owner = args[0]
		}
		attacks, err := a.SiegeHistory(cmd.Context(), owner, limit)
		if err != nil {
			return err
		}
		if len(attacks) == 0 {
			fmt.Println("No attacks recorded.")
			return nil
		}
		for _, s := range attacks {
			outcome := fmt.Sprintf("dmg %d (shield %d, health %d, drained %d, stolen %d)",
				s.Damage, s.ShieldDamage, s.HealthDamage, s.PointsDrained, s.PointsStolen)
			switch {
			case s.Nullified:
				outcome = "nullified"
			case s.Absorbed:
				outcome = "absorbed"
			}
			fmt.Printf("%s  %-12s %-14s %s  points %d->%d\n",
				s.CreatedAt.Local().Format("2006-01-02 15:04"),
				s.AttackerID, s.Action, outcome,
				s.Before.CurrentPoints, s.After.CurrentPoints)
		}
		return nil
	},
}

func init() {
	moveCmd.AddCommand(moveListCmd)
	moveCmd.AddCommand(moveUnlockCmd)
	moveCmd.AddCommand(moveUseCmd)
	moveCmd.AddCommand(moveMasterCmd)
	moveUseCmd.Flags().StringP("target", "t", "", "Target player (default: self)")

	cardCmd.AddCommand(cardListCmd)
	cardCmd.AddCommand(cardUnlockCmd)
	cardCmd.AddCommand(cardCastCmd)
	cardCmd.AddCommand(cardResetCmd)
	cardCmd.AddCommand(cardMasterCmd)
	cardCastCmd.Flags().StringP("target", "t", "", "Target player (default: self)")

	siegeCmd.AddCommand(siegeHistoryCmd)
	siegeHistoryCmd.Flags().IntP("limit", "n", 20, "Maximum number of attacks to show")

	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(cardCmd)
	rootCmd.AddCommand(turnCmd)
	rootCmd.AddCommand(siegeCmd)
}
