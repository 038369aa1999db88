package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/listing"
	"github.com/99minutos/storefront/internal/core/service"
	"github.com/99minutos/storefront/internal/pkg/clock"
)

var (
	showcaseTab      string
	showcaseWide     bool
	showcasePlay     bool
	showcaseInterval time.Duration
)

// showcaseCmd prints a seller's public page
var showcaseCmd = &cobra.Command{
	Use:   "showcase [username]",
	Short: "Show a seller's public profile and items",
	Long: `Shows a seller's public profile and the items under one tab.

With --play the items are shown as a banner carousel, one slide per
--interval, until every slide was shown once.`,
	Args: cobra.ExactArgs(1),
	RunE: runShowcase,
}

func init() {
	showcaseCmd.Flags().StringVarP(&showcaseTab, "tab", "t", "for_sale", "for_sale or sold")
	showcaseCmd.Flags().BoolVar(&showcaseWide, "wide", false, "two banners per slide")
	showcaseCmd.Flags().BoolVar(&showcasePlay, "play", false, "rotate through the items as a carousel")
	showcaseCmd.Flags().DurationVar(&showcaseInterval, "interval", service.DefaultSlideInterval, "carousel slide interval")
}

func runShowcase(cmd *cobra.Command, args []string) error {
	if !listing.ShowcaseTabs.Has(showcaseTab) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownTab, showcaseTab)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	profile, err := a.profiles().PublicProfile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	items := listing.Derive(profile.Items, listing.ShowcaseTabs, listing.DefaultParams(showcaseTab))

	out := cmd.OutOrStdout()
	if jsonOut {
		profile.Items = items
		return printJSON(out, profile)
	}

	fmt.Fprintf(out, "%s (@%s)\n", profile.Name, profile.Username)
	if profile.Bio != "" {
		fmt.Fprintln(out, profile.Bio)
	}
	names := make([]string, 0, 2)
	for _, t := range listing.ShowcaseTabs.Tabs() {
		names = append(names, t.Name)
	}
	printCounts(out, names, listing.Counts(profile.Items, listing.ShowcaseTabs))
	fmt.Fprintln(out)

	if !showcasePlay {
		if len(items) == 0 {
			fmt.Fprintln(out, "Nothing here yet")
			return nil
		}
		return printProducts(out, items)
	}
	return playCarousel(cmd.Context(), out, clock.Real(), items)
}

// playCarousel prints every slide once, advancing on the carousel timer.
func playCarousel(ctx context.Context, out io.Writer, clk clock.Clock, items []domain.Product) error {
	slides := slideLabels(items, showcaseWide)
	if len(slides) == 0 {
		fmt.Fprintln(out, "Nothing here yet")
		return nil
	}

	c := service.NewCarousel(clk, showcaseInterval, len(items))
	c.SetWide(showcaseWide)

	shown := make(chan int, len(slides))
	fmt.Fprintf(out, "[1/%d] %s\n", c.SlideCount(), slides[0])
	c.Start(func(i int) {
		select {
		case shown <- i:
		default:
		}
	})
	defer c.Stop()

	for seen := 1; seen < len(slides); {
		select {
		case <-ctx.Done():
			return nil
		case i := <-shown:
			if i >= len(slides) {
				continue
			}
			fmt.Fprintf(out, "[%d/%d] %s\n", i+1, len(slides), slides[i])
			seen++
		}
	}
	return nil
}

func slideLabels(items []domain.Product, wide bool) []string {
	if !wide {
		labels := make([]string, len(items))
		for i, p := range items {
			labels[i] = p.Name
		}
		return labels
	}
	pairs := service.SlidePairs(items)
	labels := make([]string, len(pairs))
	for i, pair := range pairs {
		names := make([]string, len(pair))
		for j, p := range pair {
			names[j] = p.Name
		}
		labels[i] = strings.Join(names, " | ")
	}
	return labels
}
