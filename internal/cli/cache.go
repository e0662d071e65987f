package cli

import (
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the answer cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show answer cache statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		stats, err := shared.answers.CollectStats()
		if err != nil {
			return err
		}

		cmd.Printf("Entries:    %d\n", stats.Entries)
		cmd.Printf("Total size: %.1f KB\n", float64(stats.TotalSize)/1024)
		if !stats.Oldest.IsZero() {
			cmd.Printf("Oldest:     %s\n", stats.Oldest.Format("2006-01-02 15:04:05"))
			cmd.Printf("Newest:     %s\n", stats.Newest.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var cacheGCCmd = &cobra.Command{
	Use:   "gc",
	Short: "Remove stale answer cache entries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		removed, err := shared.answers.GC()
		if err != nil {
			return err
		}
		cmd.Printf("Removed %d stale entries\n", removed)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every answer cache entry",
	RunE: func(cmd *cobra.Command, _ []string) error {
		removed, err := shared.answers.Clear()
		if err != nil {
			return err
		}
		cmd.Printf("Removed %d entries\n", removed)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheGCCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
