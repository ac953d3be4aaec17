package main

import (
	"fmt"

	"vaultwars/internal/vw"

	"github.com/spf13/cobra"
)

func printOfflineMove(m *vw.OfflineMove) {
	detail := m.Detail
	if m.TargetID != "" {
		detail = fmt.Sprintf("-> %s %s", m.TargetID, detail)
	}
	fmt.Printf("%s  %s  %-17s %-9s %s\n",
		m.ID, m.CreatedAt.Local().Format("15:04:05"), m.Type, m.Status, detail)
}

var offlineCmd = &cobra.Command{
	Use:   "offline",
	Short: "Queue and manage offline moves",
}

var offlineStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's offline allowance",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "OfflineStatus")
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.OfflineStatus(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Remaining:    %d / %d\n", st.Remaining, st.Max)
		fmt.Printf("Restore cost: %d\n", st.NextRestoreCost)
		fmt.Printf("Resets:       %s\n", st.ResetsAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

var offlineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List today's offline moves",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "OfflineMoves")
		if err != nil {
			return err
		}
		defer a.Close()

		moves, err := a.OfflineMoves(cmd.Context())
		if err != nil {
			return err
		}
		if len(moves) == 0 {
			fmt.Println("No offline moves today.")
			return nil
		}
		for _, m := range moves {
			printOfflineMove(m)
		}
		return nil
	},
}

var offlineSubmitCmd = &cobra.Command{
	Use:   "submit TYPE",
	Short: "Submit an offline move (vault_attack, shield_buff, pp_trade, mastery_challenge)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := vw.OfflineRequest{Type: vw.OfflineMoveType(args[0])}
		req.TargetID, _ = cmd.Flags().GetString("target")
		req.Move, _ = cmd.Flags().GetString("move")
		req.Detail, _ = cmd.Flags().GetString("detail")

		a, err := newApp(cmd.Context(), "SubmitOfflineMove")
		if err != nil {
			return err
		}
		defer a.Close()

		m, r, err := a.SubmitOfflineMove(cmd.Context(), req)
		if err != nil {
			return err
		}
		printOfflineMove(m)
		if r != nil {
			printResult(r)
		}
		return nil
	},
}

var offlineRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Buy back one offline move for today",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "RestoreOfflineMove")
		if err != nil {
			return err
		}
		defer a.Close()

		cost, err := a.RestoreOfflineMove(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Restored one offline move for %d point(s)\n", cost)
		return nil
	},
}

var offlineCompleteCmd = &cobra.Command{
	Use:   "complete ID",
	Short: "Mark a pending offline move completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "CompleteOfflineMove")
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.CompleteOfflineMove(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printOfflineMove(m)
		return nil
	},
}

var offlineFailCmd = &cobra.Command{
	Use:   "fail ID",
	Short: "Mark a pending offline move failed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "FailOfflineMove")
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.FailOfflineMove(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printOfflineMove(m)
		return nil
	},
}

func init() {
	offlineCmd.AddCommand(offlineStatusCmd)
	offlineCmd.AddCommand(offlineListCmd)
	offlineCmd.AddCommand(offlineSubmitCmd)
	offlineCmd.AddCommand(offlineRestoreCmd)
	offlineCmd.AddCommand(offlineCompleteCmd)
	offlineCmd.AddCommand(offlineFailCmd)

	offlineSubmitCmd.Flags().StringP("target", "t", "", "Target player")
	offlineSubmitCmd.Flags().StringP("move", "m", "", "Move used by a vault_attack")
	offlineSubmitCmd.Flags().String("detail", "", "Free-form note")

	rootCmd.AddCommand(offlineCmd)
}
