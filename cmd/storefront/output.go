package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/99minutos/storefront/internal/core/domain"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printProducts(w io.Writer, items []domain.Product) error {
	t := newTable(w)
	fmt.Fprintln(t, "ID\tNAME\tPRICE\tSTOCK\tSTATUS\tCATEGORY")
	for _, p := range items {
		cat := ""
		if p.Category != nil {
			cat = p.Category.Name
		}
		fmt.Fprintf(t, "%s\t%s\t%.2f\t%d\t%s\t%s\n", p.ID, p.Name, float64(p.Price), p.StockQuantity, p.Status, cat)
	}
	return t.Flush()
}

func printOrders(w io.Writer, items []domain.Order) error {
	t := newTable(w)
	fmt.Fprintln(t, "ID\tNUMBER\tTOTAL\tSTATUS\tBUYER")
	for _, o := range items {
		buyer := o.Buyer.Name
		if buyer == "" {
			buyer = o.Buyer.Email
		}
		fmt.Fprintf(t, "%s\t%s\t%.2f\t%s\t%s\n", o.ID, o.OrderNumber, float64(o.TotalPrice), o.Status, buyer)
	}
	return t.Flush()
}

// printCounts prints tab counts in tab order, e.g. "draft 2 · for_sale 5".
func printCounts(w io.Writer, names []string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, fmt.Sprintf("%s %d", n, counts[n]))
	}
	fmt.Fprintln(w, strings.Join(parts, " · "))
}

func printNotices(w io.Writer, notice, warning string) {
	if notice != "" {
		fmt.Fprintf(w, "! %s\n", notice)
	}
	if warning != "" {
		fmt.Fprintf(w, "! %s\n", warning)
	}
}
