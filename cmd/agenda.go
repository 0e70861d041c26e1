package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/gbdash/internal/agenda"
	"github.com/theirongolddev/gbdash/internal/cli"
	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagAgendaOutput string

var agendaCmd = &cobra.Command{
	Use:   "agenda",
	Short: "Manage the agenda and export it as iCalendar or CSV",
	RunE:  runAgendaList,
}

var agendaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List agenda entries",
	RunE:  runAgendaList,
}

var agendaAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an agenda entry",
	RunE:  runAgendaAdd,
}

var agendaUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Change fields of an agenda entry; unset flags are left as they are",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgendaUpdate,
}

var agendaDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an agenda entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgendaDelete,
}

var agendaICSCmd = &cobra.Command{
	Use:   "ics",
	Short: "Export the agenda as an iCalendar file",
	RunE:  runAgendaICS,
}

var agendaCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export the agenda as CSV",
	RunE:  runAgendaCSV,
}

var agendaImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import entries from an agenda CSV, replacing entries with the same ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgendaImport,
}

func init() {
	addAgendaFlags(agendaAddCmd)
	addAgendaFlags(agendaUpdateCmd)
	for _, c := range []*cobra.Command{agendaICSCmd, agendaCSVCmd} {
		c.Flags().StringVarP(&flagAgendaOutput, "output", "o", "-", "Output file (- for stdout)")
	}

	agendaCmd.AddCommand(agendaListCmd, agendaAddCmd, agendaUpdateCmd, agendaDeleteCmd,
		agendaICSCmd, agendaCSVCmd, agendaImportCmd)
	rootCmd.AddCommand(agendaCmd)
}

func addAgendaFlags(c *cobra.Command) {
	f := c.Flags()
	f.String("name", "", "Entry name")
	f.String("address", "", "Address")
	f.String("date", "", "Date (YYYY-MM-DD or DD/MM/YYYY)")
	f.String("time", "", "Start time (HH:MM); empty uses the default start on export")
	f.Float64("cost", 0, "Cost")
}

func agendaInput(c *cobra.Command) (agenda.Input, error) {
	f := c.Flags()
	var in agenda.Input
	var errs []error
	for _, s := range []struct {
		name string
		dst  **string
	}{
		{"name", &in.Name}, {"address", &in.Address}, {"date", &in.Date}, {"time", &in.Time},
	} {
		if f.Changed(s.name) {
			v, err := f.GetString(s.name)
			errs = append(errs, err)
			*s.dst = &v
		}
	}
	if f.Changed("cost") {
		v, err := f.GetFloat64("cost")
		errs = append(errs, err)
		in.Cost = &v
	}
	return in, errors.Join(errs...)
}

func runAgendaList(_ *cobra.Command, _ []string) error {
	lr, err := loadData()
	if err != nil {
		return err
	}
	entries := agenda.NewManager(lr.Book).List()
	if len(entries) == 0 {
		fmt.Println("\n  The agenda is empty. Add an entry with: gbdash agenda add --name ...")
		return nil
	}

	var total float64
	rows := make([][]string, 0, len(entries)+1)
	for _, e := range entries {
		total += e.Cost
		rows = append(rows, []string{
			shortID(e.ID),
			cli.FormatDate(e.Date),
			e.Time,
			e.Name,
			e.Address,
			cli.FormatMoney(e.Cost),
		})
	}
	rows = append(rows, []string{"Total", "", "", "", "", cli.FormatMoney(total)})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:       fmt.Sprintf("Agenda  %d entries", len(entries)),
		Headers:     []string{"ID", "Date", "Time", "Name", "Address", "Cost"},
		Rows:        rows,
		TotalRow:    true,
		LeftAligned: []int{1, 2, 3, 4},
	}))
	return nil
}

// shortID trims a UUID to its first group for display. Commands accept
// any unique prefix.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// resolveAgendaID expands a unique ID prefix to the full entry ID.
func resolveAgendaID(entries []model.AgendaEntry, prefix string) (string, error) {
	var match string
	for _, e := range entries {
		if e.ID == prefix {
			return e.ID, nil
		}
		if strings.HasPrefix(e.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("agenda id %q is ambiguous", prefix)
			}
			match = e.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("agenda entry %s: %w", prefix, agenda.ErrNotFound)
	}
	return match, nil
}

// setAgendaAddress stores address on the entry matching idPrefix.
func setAgendaAddress(lr *pipeline.LoadResult, idPrefix, address string) error {
	m := agenda.NewManager(lr.Book)
	id, err := resolveAgendaID(m.List(), idPrefix)
	if err != nil {
		return err
	}
	_, err = m.Update(id, agenda.Patch{Address: &address})
	return err
}

func runAgendaAdd(c *cobra.Command, _ []string) error {
	in, err := agendaInput(c)
	if err != nil {
		return err
	}
	entry, err := in.Entry()
	if err != nil {
		return err
	}
	return modify(func(lr *pipeline.LoadResult) error {
		added := agenda.NewManager(lr.Book).Add(entry)
		fmt.Printf("  Added agenda entry %s (%s)\n", shortID(added.ID), added.Name)
		return nil
	})
}

func runAgendaUpdate(c *cobra.Command, args []string) error {
	in, err := agendaInput(c)
	if err != nil {
		return err
	}
	p, err := in.Patch()
	if err != nil {
		return err
	}
	return modify(func(lr *pipeline.LoadResult) error {
		m := agenda.NewManager(lr.Book)
		id, err := resolveAgendaID(m.List(), args[0])
		if err != nil {
			return err
		}
		e, err := m.Update(id, p)
		if err != nil {
			return err
		}
		fmt.Printf("  Updated agenda entry %s (%s)\n", shortID(e.ID), e.Name)
		return nil
	})
}

func runAgendaDelete(_ *cobra.Command, args []string) error {
	return modify(func(lr *pipeline.LoadResult) error {
		m := agenda.NewManager(lr.Book)
		id, err := resolveAgendaID(m.List(), args[0])
		if err != nil {
			return err
		}
		if err := m.Delete(id); err != nil {
			return err
		}
		fmt.Printf("  Deleted agenda entry %s\n", shortID(id))
		return nil
	})
}

func runAgendaICS(_ *cobra.Command, _ []string) error {
	lr, err := loadData()
	if err != nil {
		return err
	}
	opts, err := appCfg.ICSOptions()
	if err != nil {
		return err
	}
	data, err := agenda.ToICS(agenda.NewManager(lr.Book).List(), opts)
	if err != nil {
		return err
	}
	return writeOutput(flagAgendaOutput, data)
}

func runAgendaCSV(_ *cobra.Command, _ []string) error {
	lr, err := loadData()
	if err != nil {
		return err
	}
	data, err := agenda.ToCSV(agenda.NewManager(lr.Book).List())
	if err != nil {
		return err
	}
	return writeOutput(flagAgendaOutput, data)
}

func runAgendaImport(_ *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	entries, err := agenda.FromCSV(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	return modify(func(lr *pipeline.LoadResult) error {
		added, replaced := agenda.NewManager(lr.Book).Import(entries)
		fmt.Printf("  Imported %d entries (%d new, %d replaced)\n", added+replaced, added, replaced)
		return nil
	})
}
