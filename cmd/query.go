package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"parceldash/internal/query"
	"parceldash/internal/types"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Filter the dataset and print or export the matching records",
	Args:  cobra.NoArgs,
	RunE:  runQuery,
}

func init() {
	addFilterFlags(queryCmd)
	queryCmd.Flags().IntP("limit", "n", 50, "rows to print, 0 for all")
	queryCmd.Flags().StringP("out", "o", "", "write every matching record to this CSV file")
	queryCmd.Flags().Bool("predicted", false, "list the predicted-owner view of the reduced dataset for --owner/--type")
}

func runQuery(cmd *cobra.Command, _ []string) error {
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

	var rs *types.RecordSet
	if predicted, _ := cmd.Flags().GetBool("predicted"); predicted {
		owner, _ := cmd.Flags().GetString("owner")
		typ, _ := cmd.Flags().GetString("type")
		var code string
		if code, err = predictedType(typ); err != nil {
			return err
		}
		if owner == "" {
			owner = query.All
		}
		rs, err = s.Predicted(ctx, owner, code)
	} else {
		var spec query.FilterSpec
		if spec, err = filterSpec(cmd); err != nil {
			return err
		}
		rs, err = s.Filter(ctx, spec)
	}
	if err != nil {
		return err
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := writeCSV(out, rs); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, styles.Success.Render(fmt.Sprintf("wrote %d records to %s", rs.Len(), out)))
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	fmt.Println(recordTable(rs, limit))
	fmt.Println(styles.Muted.Render(summaryLine(rs, limit)))
	return nil
}

// predictedType maps the --type flag to a dataset type code, rejecting
// values the HTTP API would also reject.
func predictedType(typ string) (string, error) {
	if typ == "" || typ == query.All {
		return query.All, nil
	}
	t, ok := query.ParseSubtype(typ)
	if !ok {
		return "", types.NewInvalidParameter("type", typ)
	}
	return t.Code(), nil
}

func recordTable(rs *types.RecordSet, limit int) string {
	rows := rs.Records
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Border).
		Headers("ROW", "OWNER", "LOCALITY", "PRIOR SALE", "LAST SALE", "AMOUNT", "BUILT", "TYPE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			if col == 5 {
				return styles.Cell.Align(lipgloss.Right)
			}
			return styles.Cell
		})
	for _, r := range rows {
		t.Row(
			fmt.Sprint(r.Row),
			truncate(r.Owner, 32),
			truncate(r.Locality, 24),
			formatDate(r.PriorSaleDate),
			formatDate(r.LastSaleDate),
			formatMoney(r.LastSaleAmount),
			formatInt(r.YearBuilt),
			r.Type.Code(),
		)
	}
	return t.String()
}

func summaryLine(rs *types.RecordSet, limit int) string {
	if limit > 0 && rs.Len() > limit {
		return fmt.Sprintf("%s records, showing the first %d", printer.Sprint(rs.Len()), limit)
	}
	return fmt.Sprintf("%s records", printer.Sprint(rs.Len()))
}
