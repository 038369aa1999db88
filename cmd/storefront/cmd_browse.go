package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/listing"
	"github.com/99minutos/storefront/internal/core/service"
)

// viewFlags are the filters shared by every listing command.
type viewFlags struct {
	search    string
	category  string
	condition string
	tab       string
	sort      string
}

func (f *viewFlags) register(cmd *cobra.Command, defaultTab string) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "filter by name or category")
	cmd.Flags().StringVar(&f.category, "category", "", "category id")
	cmd.Flags().StringVar(&f.condition, "condition", "", "product condition")
	cmd.Flags().StringVar(&f.sort, "sort", string(listing.DefaultSort), "newest, oldest, price_low or price_high")
	if defaultTab != "-" {
		cmd.Flags().StringVarP(&f.tab, "tab", "t", defaultTab, "status tab")
	}
}

func (f *viewFlags) params() listing.Params {
	return listing.Params{
		Search:    f.search,
		Category:  f.category,
		Condition: f.condition,
		Tab:       f.tab,
		Sort:      listing.ParseSortKey(f.sort),
	}
}

var (
	catalogFlags  viewFlags
	listingsFlags viewFlags
	ordersFlags   viewFlags
	ordersRole    string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the public catalog grouped by category",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

var listingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "List your products by status tab",
	Args:  cobra.NoArgs,
	RunE:  runListings,
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your sales or purchases",
	Args:  cobra.NoArgs,
	RunE:  runOrders,
}

func init() {
	catalogFlags.register(catalogCmd, "-")
	listingsFlags.register(listingsCmd, "for_sale")
	ordersFlags.register(ordersCmd, "")
	ordersCmd.Flags().StringVarP(&ordersRole, "role", "r", string(listing.RoleSales), "sales or purchases")
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	screens, err := a.screens(ctx)
	if err != nil {
		return err
	}
	defer screens.Close()

	view := screens.Catalog
	if err := view.Apply(catalogFlags.params()); err != nil {
		return err
	}

	// The catalog and the category list are independent requests.
	var categories []domain.Category
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := view.Load(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = a.catalog().Categories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	snap := view.Snapshot()
	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, struct {
			Groups     []listing.Group[domain.Product] `json:"groups"`
			Categories []domain.Category               `json:"categories"`
		}{snap.Groups, categories})
	}

	printNotices(out, snap.Notice, snap.Warning)
	if len(snap.Groups) == 0 {
		fmt.Fprintln(out, "No products found")
	}
	for _, grp := range snap.Groups {
		name := grp.Name
		if name == "" {
			name = "Uncategorised"
		}
		fmt.Fprintf(out, "\n== %s (%d)\n", name, len(grp.Items))
		if err := printProducts(out, grp.Items); err != nil {
			return err
		}
	}
	if len(categories) > 0 {
		fmt.Fprintf(out, "\n%d categories available\n", len(categories))
	}
	return nil
}

func runListings(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	screens, err := a.screens(ctx)
	if err != nil {
		return err
	}
	defer screens.Close()

	return showView(ctx, cmd.OutOrStdout(), screens.Listings, listing.ProductTabs, listingsFlags.params(), printProducts)
}

func runOrders(cmd *cobra.Command, _ []string) error {
	role := listing.OrderRole(ordersRole)
	if role != listing.RoleSales && role != listing.RolePurchases {
		return fmt.Errorf("unknown role %q: use sales or purchases", ordersRole)
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	screens, err := a.screens(ctx)
	if err != nil {
		return err
	}
	defer screens.Close()

	return showView(ctx, cmd.OutOrStdout(), screens.Orders(role), listing.OrderStatusTabs, ordersFlags.params(), printOrders)
}

// showView applies p, loads the view once and prints its snapshot.
func showView[T domain.Entity](ctx context.Context, out io.Writer, view *service.ListingView[T], tabs *listing.TabSet, p listing.Params, render func(io.Writer, []T) error) error {
	if err := view.Apply(p); err != nil {
		return err
	}
	if _, err := view.Load(ctx); err != nil {
		return err
	}

	snap := view.Snapshot()
	if jsonOut {
		return printJSON(out, snap)
	}

	names := make([]string, 0, len(tabs.Tabs()))
	for _, t := range tabs.Tabs() {
		names = append(names, t.Name)
	}
	printCounts(out, names, snap.Counts)
	printNotices(out, snap.Notice, snap.Warning)
	if len(snap.Items) == 0 {
		fmt.Fprintln(out, "Nothing here yet")
		return nil
	}
	return render(out, snap.Items)
}
