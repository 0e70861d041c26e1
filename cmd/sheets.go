package cmd

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/theirongolddev/gbdash/internal/cli"
	"github.com/theirongolddev/gbdash/internal/workbook"

	"github.com/spf13/cobra"
)

var flagSheetOutput string

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "View the workbook sheets or export one as its own .xlsx",
	RunE:  runSheetsList,
}

var sheetsShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a sheet as it would be saved",
	Args:  cobra.ExactArgs(1),
	RunE:  runSheetsShow,
}

var sheetsExportCmd = &cobra.Command{
	Use:   "export NAME",
	Short: "Write a single sheet to NAME.xlsx",
	Args:  cobra.ExactArgs(1),
	RunE:  runSheetsExport,
}

func init() {
	sheetsExportCmd.Flags().StringVarP(&flagSheetOutput, "output", "o", "", "Output file (default NAME.xlsx, - for stdout)")
	sheetsCmd.AddCommand(sheetsShowCmd, sheetsExportCmd)
	rootCmd.AddCommand(sheetsCmd)
}

func runSheetsList(_ *cobra.Command, _ []string) error {
	lr, err := loadData()
	if err != nil {
		return err
	}
	var rows [][]string
	for _, name := range lr.Book.SheetNames() {
		_, data, err := lr.Book.SheetRows(name)
		if err != nil {
			return err
		}
		rows = append(rows, []string{name, cli.FormatNumber(int64(max(len(data)-1, 0)))})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Sheets",
		Headers: []string{"Sheet", "Rows"},
		Rows:    rows,
	}))
	return nil
}

func runSheetsShow(_ *cobra.Command, args []string) error {
	lr, err := loadData()
	if err != nil {
		return err
	}
	name, data, err := lr.Book.SheetRows(args[0])
	if err != nil {
		return err
	}
	if len(data) == 0 {
		fmt.Printf("\n  %s is empty.\n", name)
		return nil
	}
	headers := sheetCells(data[0], len(data[0]))
	rows := make([][]string, 0, len(data)-1)
	for _, r := range data[1:] {
		rows = append(rows, sheetCells(r, len(headers)))
	}
	left := make([]int, len(headers))
	for i := range left {
		left[i] = i
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:       fmt.Sprintf("%s  %d rows", name, len(rows)),
		Headers:     headers,
		Rows:        rows,
		LeftAligned: left,
	}))
	return nil
}

// sheetCells formats one sheet row as n display strings.
func sheetCells(row []any, n int) []string {
	out := make([]string, n)
	for i := 0; i < n && i < len(row); i++ {
		switch v := row[i].(type) {
		case nil:
		case float64:
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		case string:
			out[i] = v
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

func runSheetsExport(_ *cobra.Command, args []string) error {
	lr, err := loadData()
	if err != nil {
		return err
	}
	name, _, err := lr.Book.SheetRows(args[0])
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := workbook.ExportSheet(&buf, lr.Book, name); err != nil {
		return err
	}
	out := flagSheetOutput
	if out == "" {
		out = name + ".xlsx"
	}
	if err := writeOutput(out, buf.Bytes()); err != nil {
		return err
	}
	if out != "-" && !flagQuiet {
		fmt.Printf("  Wrote %s\n", out)
	}
	return nil
}
