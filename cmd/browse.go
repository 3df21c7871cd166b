package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the filtered records interactively",
	Args:  cobra.NoArgs,
	RunE:  runBrowse,
}

func init() {
	addFilterFlags(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	variant, _ := cmd.Flags().GetString("variant")
	s, err := a.cliSession(variant)
	if err != nil {
		return err
	}
	spec, err := filterSpec(cmd)
	if err != nil {
		return err
	}
	rs, err := s.Filter(ctx, spec)
	if err != nil {
		return err
	}
	if rs.Len() == 0 {
		fmt.Println(styles.Warn.Render("no records match"))
		return nil
	}

	cols := s.Columns()
	lines := make([]string, rs.Len())
	for i, r := range rs.Records {
		lines[i] = browseLine(r.Owner, r.Locality, formatDate(r.LastSaleDate), formatMoney(r.LastSaleAmount))
	}
	p := &picker{
		lines:  lines,
		header: browseLine("OWNER", cols.Locality, "LAST SALE", "AMOUNT"),
		open: func(i int) {
			fmt.Println(renderRecord(rs.Records[i], cols.Locality, a.zones))
		},
	}
	return p.run()
}

func browseLine(owner, locality, date, amount string) string {
	return fmt.Sprintf("%-32s | %-24s | %-10s | %12s", truncate(owner, 32), truncate(locality, 24), date, amount)
}
