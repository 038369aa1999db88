package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/listing"
	"github.com/99minutos/storefront/internal/core/ports"
)

// productFlags is the listing form on the command line.
type productFlags struct {
	name        string
	description string
	extra       string
	price       float64
	condition   string
	category    string
	stock       int
	status      string
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "product title")
	cmd.Flags().StringVar(&f.description, "description", "", "product description")
	cmd.Flags().StringVar(&f.extra, "extra", "", "additional description")
	cmd.Flags().Float64Var(&f.price, "price", 0, "price; 0 lists the item for free")
	cmd.Flags().StringVar(&f.condition, "condition", domain.ConditionNew, "new, like_new, lightly_used, used_good or used_frequent")
	cmd.Flags().StringVar(&f.category, "category", "", "category id")
	cmd.Flags().IntVar(&f.stock, "stock", 1, "units in stock")
	cmd.Flags().StringVar(&f.status, "status", domain.ProductStatusPublished, "draft or published")
}

func (f *productFlags) input() ports.ProductInput {
	return ports.ProductInput{
		Name:                  f.name,
		Description:           f.description,
		AdditionalDescription: f.extra,
		Price:                 domain.Amount(f.price),
		Condition:             f.condition,
		CategoryID:            f.category,
		StockQuantity:         f.stock,
		Status:                f.status,
	}
}

var (
	newListingFlags  productFlags
	editListingFlags productFlags
)

var listingNewCmd = &cobra.Command{
	Use:   "listing-new",
	Short: "Put a new product up for sale",
	Long: `Creates a listing from the form flags. Every field is sent, so
unset flags take their defaults.

Example:
  storefront listing-new --name "Desk lamp" --description "Brass, works" \
    --price 12.5 --category 3 --condition like_new`,
	Args: cobra.NoArgs,
	RunE: runListingNew,
}

var listingEditCmd = &cobra.Command{
	Use:   "listing-edit [product-id]",
	Short: "Replace the details of one of your products",
	Args:  cobra.ExactArgs(1),
	RunE:  runListingEdit,
}

var listingStatsCmd = &cobra.Command{
	Use:   "listing-stats",
	Short: "Show the seller dashboard figures",
	Args:  cobra.NoArgs,
	RunE:  runListingStats,
}

func init() {
	newListingFlags.register(listingNewCmd)
	editListingFlags.register(listingEditCmd)
}

func runListingNew(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.listings().Create(cmd.Context(), newListingFlags.input())
	if err != nil {
		return formError(cmd.ErrOrStderr(), err)
	}
	if jsonOut {
		return printJSON(cmd.OutOrStdout(), p)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Listed %q as product %s (%s)\n", p.Name, p.ID, p.Status)
	return nil
}

func runListingEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.listings().Update(cmd.Context(), args[0], editListingFlags.input())
	if err != nil {
		return formError(cmd.ErrOrStderr(), err)
	}
	if jsonOut {
		return printJSON(cmd.OutOrStdout(), p)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Product %s updated\n", args[0])
	return nil
}

// formError prints field errors one per line, flag-style, and returns err.
func formError(w io.Writer, err error) error {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	fields := make([]string, 0, len(verr.Fields))
	for f := range verr.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		for _, msg := range verr.Fields[f] {
			fmt.Fprintf(w, "  %s: %s\n", f, msg)
		}
	}
	return err
}

func runListingStats(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.listings().Stats(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, s)
	}

	w := newTable(out)
	fmt.Fprintf(w, "Products\t%d\n", s.Total)
	fmt.Fprintf(w, "Published\t%d\n", s.Published)
	fmt.Fprintf(w, "Drafts\t%d\n", s.Draft)
	fmt.Fprintf(w, "Sold\t%d\n", s.Sold)
	fmt.Fprintf(w, "Stock\t%d\n", s.TotalStock)
	fmt.Fprintf(w, "Total value\t%.2f\n", s.TotalValue)
	fmt.Fprintf(w, "Average price\t%.2f\n", s.AvgPrice)
	for _, c := range listing.Conditions {
		fmt.Fprintf(w, "  %s\t%d\n", c, s.Conditions[c])
	}
	return w.Flush()
}
