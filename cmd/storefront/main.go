package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/99minutos/storefront/internal/pkg/config"
	"github.com/99minutos/storefront/pkg/logger"
)

// @title           Storefront API
// @version         1.0
// @description     Backend-for-frontend for the marketplace storefront: session, catalog, seller dashboard and checkout.
// @BasePath        /

var (
	// Global flags
	logLevel string
	jsonOut  bool

	cfg *config.Config
	log zerolog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Marketplace storefront client",
	Long: `storefront talks to the marketplace backend on behalf of one user.

The session is kept in the configured session storage (SESSION_BACKEND), so
with redis or mongo a login survives between commands and is shared with a
running "storefront serve".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if logLevel != "" {
			c.LogLevel = logLevel
		}
		cfg = c
		log = logger.Init(logger.Options{
			Level:   c.LogLevel,
			Pretty:  c.Development(),
			Service: "storefront",
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error, off)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")

	rootCmd.AddCommand(
		serveCmd,
		loginCmd,
		logoutCmd,
		whoamiCmd,
		catalogCmd,
		productCmd,
		listingsCmd,
		listingCmd,
		listingNewCmd,
		listingEditCmd,
		listingStatsCmd,
		ordersCmd,
		orderStatusCmd,
		buyCmd,
		showcaseCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
