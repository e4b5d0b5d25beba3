package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version 由 -ldflags "-X main.version=..." 注入
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "resilience",
		Short: "Market resilience indicator over L2 order-book snapshots",
		Long: `resilience detects liquidity depletion in order-book snapshots, watches how
the book recovers, and scores the recovery in [0,1].

Examples:
  resilience replay --file books.jsonl
  resilience live --config configs/resilience.yaml`,
		SilenceUsage: true,
	}
	root.AddCommand(newReplayCmd(), newLiveCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func main() {
	// .env 可选，不存在时忽略
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
