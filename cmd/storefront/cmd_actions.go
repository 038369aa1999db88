package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/99minutos/storefront/internal/core/service"
)

var buyQuantity int

// listingCmd changes one or more of the user's products
var listingCmd = &cobra.Command{
	Use:   "listing [publish|unpublish|delete] [product-id...]",
	Short: "Publish, unpublish or delete your products",
	Long: `Applies one action to every product id given. Failures are reported
per product; the command fails if any product failed.

Example:
  storefront listing publish 12 13 14`,
	Args: cobra.MinimumNArgs(2),
	RunE: runListingAction,
}

var buyCmd = &cobra.Command{
	Use:   "buy [product-id]",
	Short: "Buy a product now",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuy,
}

var orderStatusCmd = &cobra.Command{
	Use:   "order-status [order-id] [status]",
	Short: "Move one of your sales to a new status",
	Args:  cobra.ExactArgs(2),
	RunE:  runOrderStatus,
}

var productCmd = &cobra.Command{
	Use:   "product [product-id]",
	Short: "Show a public product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProduct,
}

func init() {
	buyCmd.Flags().IntVarP(&buyQuantity, "quantity", "q", 1, "units to buy")
}

func runListingAction(cmd *cobra.Command, args []string) error {
	action, err := service.ParseListingAction(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.listings().Bulk(cmd.Context(), action, args[1:])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		if err := printJSON(out, results); err != nil {
			return err
		}
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			if !jsonOut {
				fmt.Fprintf(out, "%s\tfailed: %v\n", r.ProductID, r.Err)
			}
			continue
		}
		if !jsonOut {
			fmt.Fprintf(out, "%s\t%s ok\n", r.ProductID, action)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d products failed", failed, len(results))
	}
	return nil
}

func runBuy(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	order, err := a.checkout().BuyNow(cmd.Context(), args[0], buyQuantity)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(cmd.OutOrStdout(), order)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Order %s placed: %d x product %s, total %.2f\n",
		order.OrderNumber, buyQuantity, args[0], float64(order.TotalPrice))
	return nil
}

func runOrderStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.checkout().UpdateOrderStatus(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Order %s is now %s\n", args[0], args[1])
	return nil
}

func runProduct(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.catalog().Product(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, p)
	}
	w := newTable(out)
	fmt.Fprintf(w, "Name\t%s\n", p.Name)
	fmt.Fprintf(w, "Price\t%.2f\n", float64(p.Price))
	fmt.Fprintf(w, "Stock\t%d\n", p.StockQuantity)
	if p.SoldOut {
		fmt.Fprintf(w, "\tSold out\n")
	}
	fmt.Fprintf(w, "Cover\t%s\n", p.CoverURL)
	if p.Description != "" {
		fmt.Fprintf(w, "Description\t%s\n", p.Description)
	}
	return w.Flush()
}
