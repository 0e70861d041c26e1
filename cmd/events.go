package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/theirongolddev/gbdash/internal/agenda"
	"github.com/theirongolddev/gbdash/internal/cli"
	"github.com/theirongolddev/gbdash/internal/eventlog"
	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagEventsStatus   string
	flagEventsSearch   string
	flagEventsMonth    string
	flagEventsAllYears bool
	flagOutput         string
)

var eventsCmd = &cobra.Command{
	Use:     "events",
	Aliases: []string{"event"},
	Short:   "List and edit the event log",
	RunE:    runEventsList,
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events of the reporting year",
	RunE:  runEventsList,
}

var eventsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an event",
	RunE:  runEventsAdd,
}

var eventsEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change fields of an event; unset flags are left as they are",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsEdit,
}

var eventsConfirmCmd = &cobra.Command{
	Use:   "confirm ID",
	Short: "Mark an event as done (--undo marks it pending again)",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsConfirm,
}

var eventsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsDelete,
}

var eventsICSCmd = &cobra.Command{
	Use:   "ics",
	Short: "Export the listed events as an iCalendar file",
	RunE:  runEventsICS,
}

var eventsCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export the listed events as CSV",
	RunE:  runEventsCSV,
}

func init() {
	for _, c := range []*cobra.Command{eventsCmd, eventsListCmd, eventsICSCmd, eventsCSVCmd} {
		c.Flags().StringVar(&flagEventsStatus, "status", "all", "Filter by status: all, pending or confirmed")
		c.Flags().StringVarP(&flagEventsSearch, "search", "s", "", "Case-insensitive text search")
		c.Flags().StringVarP(&flagEventsMonth, "month", "m", "", "Only this month (\"2025-03\" or \"Marzo\")")
		c.Flags().BoolVar(&flagEventsAllYears, "all-years", false, "Ignore the reporting year")
	}
	for _, c := range []*cobra.Command{eventsICSCmd, eventsCSVCmd} {
		c.Flags().StringVarP(&flagOutput, "output", "o", "-", "Output file (- for stdout)")
	}

	addEventFlags(eventsAddCmd)
	addEventFlags(eventsEditCmd)
	eventsConfirmCmd.Flags().Bool("undo", false, "Mark the event pending instead")

	eventsCmd.AddCommand(eventsListCmd, eventsAddCmd, eventsEditCmd, eventsConfirmCmd, eventsDeleteCmd,
		eventsICSCmd, eventsCSVCmd)
	rootCmd.AddCommand(eventsCmd)
}

func addEventFlags(c *cobra.Command) {
	f := c.Flags()
	f.String("date", "", "Event date (YYYY-MM-DD or DD/MM/YYYY)")
	f.String("start", "", "Start time (HH:MM)")
	f.String("end", "", "End time (HH:MM)")
	f.String("client", "", "Client name")
	f.String("address", "", "Address")
	f.String("phone", "", "Phone")
	f.String("zone", "", "Zone")
	f.String("package", "", "Package (Clásico, Retro, Clásico + Retro, Otro)")
	f.Float64("price", 0, "Price charged")
	f.Bool("pizza", false, "Pizza add-on sold")
	f.Float64("pizza-margin", 0, "Margin earned on the pizza add-on")
	f.Bool("retro", false, "Retro exterior booked")
	f.Float64("var-cost", 0, "Variable cost of this event")
	f.Bool("default-var-cost", false, "Use the assumptions default variable cost")
	f.Bool("confirmed", false, "Event already took place")
	f.String("notes", "", "Free-form notes")
}

// eventInput reads the flags that were set on c into an Input.
func eventInput(c *cobra.Command) (eventlog.Input, error) {
	f := c.Flags()
	var in eventlog.Input
	var errs []error

	str := func(name string, dst **string) {
		if f.Changed(name) {
			v, err := f.GetString(name)
			errs = append(errs, err)
			*dst = &v
		}
	}
	num := func(name string, dst **float64) {
		if f.Changed(name) {
			v, err := f.GetFloat64(name)
			errs = append(errs, err)
			*dst = &v
		}
	}
	flag := func(name string, dst **bool) {
		if f.Changed(name) {
			v, err := f.GetBool(name)
			errs = append(errs, err)
			*dst = &v
		}
	}

	str("date", &in.Date)
	str("start", &in.StartTime)
	str("end", &in.EndTime)
	str("client", &in.ClientName)
	str("address", &in.Address)
	str("phone", &in.Phone)
	str("zone", &in.Zone)
	str("package", &in.Package)
	str("notes", &in.Notes)
	num("price", &in.Price)
	num("pizza-margin", &in.PizzaMargin)
	num("var-cost", &in.VariableCost)
	flag("pizza", &in.PizzaAddon)
	flag("retro", &in.RetroExterior)
	flag("confirmed", &in.Confirmed)
	if f.Changed("default-var-cost") {
		v, err := f.GetBool("default-var-cost")
		errs = append(errs, err)
		in.ClearVariableCost = v
	}
	if in.ClearVariableCost && in.VariableCost != nil {
		return in, errors.New("--var-cost and --default-var-cost are exclusive")
	}
	return in, errors.Join(errs...)
}

func parseEventID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid event id %q", arg)
	}
	return id, nil
}

// eventFilter builds the list filter from the list flags.
func eventFilter() (eventlog.Filter, error) {
	st, err := eventlog.ParseStatus(flagEventsStatus)
	if err != nil {
		return eventlog.Filter{}, err
	}
	f := eventlog.Filter{Status: st, Search: flagEventsSearch}
	if flagEventsMonth != "" {
		m, ok := model.ParseMonth(flagEventsMonth, reportYear())
		if !ok {
			return eventlog.Filter{}, fmt.Errorf("invalid --month %q", flagEventsMonth)
		}
		f.Month = m
	}
	return f, nil
}

func listedEvents(lr *pipeline.LoadResult) ([]model.Event, error) {
	f, err := eventFilter()
	if err != nil {
		return nil, err
	}
	events := eventlog.List(lr.Book, f)
	if flagEventsAllYears || !f.Month.IsZero() {
		return events, nil
	}
	year := reportYear()
	out := events[:0]
	for _, e := range events {
		if e.Date.Year() == year {
			out = append(out, e)
		}
	}
	return out, nil
}

func runEventsList(_ *cobra.Command, _ []string) error {
	lr, err := loadData()
	if err != nil {
		return err
	}
	events, err := listedEvents(lr)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		fmt.Println("\n  No events match.")
		return nil
	}

	assumptions := lr.Book.Assumptions.Resolve()
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		varCost := cli.FormatMoney(e.ResolvedVariableCost(assumptions))
		if e.VariableCost == nil {
			varCost += "*"
		}
		rows = append(rows, []string{
			strconv.Itoa(e.ID),
			cli.FormatDate(e.Date),
			e.StartTime,
			e.Title(),
			e.Package,
			cli.FormatMoney(e.Price),
			varCost,
			cli.FormatFlag(e.PizzaAddon),
			e.Status(),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:       fmt.Sprintf("%d events", len(events)),
		Headers:     []string{"ID", "Date", "Time", "Client", "Package", "Price", "Var. cost", "Pizza", "Status"},
		Rows:        rows,
		LeftAligned: []int{1, 2, 3, 4, 8},
	}))
	fmt.Println("  * assumptions default")
	return nil
}

func runEventsAdd(c *cobra.Command, _ []string) error {
	in, err := eventInput(c)
	if err != nil {
		return err
	}
	e, err := in.New()
	if err != nil {
		return err
	}
	return modify(func(lr *pipeline.LoadResult) error {
		added := eventlog.Add(lr.Book, e)
		fmt.Printf("  Added event %d on %s\n", added.ID, cli.FormatDate(added.Date))
		return nil
	})
}

func runEventsEdit(c *cobra.Command, args []string) error {
	id, err := parseEventID(args[0])
	if err != nil {
		return err
	}
	in, err := eventInput(c)
	if err != nil {
		return err
	}
	return modify(func(lr *pipeline.LoadResult) error {
		e, err := eventlog.Get(lr.Book, id)
		if err != nil {
			return err
		}
		if err := in.Apply(&e); err != nil {
			return err
		}
		if _, err := eventlog.Update(lr.Book, id, e); err != nil {
			return err
		}
		fmt.Printf("  Updated event %d\n", id)
		return nil
	})
}

func runEventsConfirm(c *cobra.Command, args []string) error {
	id, err := parseEventID(args[0])
	if err != nil {
		return err
	}
	undo, _ := c.Flags().GetBool("undo")
	return modify(func(lr *pipeline.LoadResult) error {
		e, err := eventlog.SetConfirmed(lr.Book, id, !undo)
		if err != nil {
			return err
		}
		fmt.Printf("  Event %d is now %s\n", e.ID, e.Status())
		return nil
	})
}

func runEventsDelete(_ *cobra.Command, args []string) error {
	id, err := parseEventID(args[0])
	if err != nil {
		return err
	}
	return modify(func(lr *pipeline.LoadResult) error {
		if err := eventlog.Delete(lr.Book, id); err != nil {
			return err
		}
		fmt.Printf("  Deleted event %d\n", id)
		return nil
	})
}

func runEventsICS(_ *cobra.Command, _ []string) error {
	lr, err := loadData()
	if err != nil {
		return err
	}
	events, err := listedEvents(lr)
	if err != nil {
		return err
	}
	opts, err := appCfg.ICSOptions()
	if err != nil {
		return err
	}
	data, err := agenda.EventsICS(events, opts)
	if err != nil {
		return err
	}
	return writeOutput(flagOutput, data)
}

func runEventsCSV(_ *cobra.Command, _ []string) error {
	lr, err := loadData()
	if err != nil {
		return err
	}
	events, err := listedEvents(lr)
	if err != nil {
		return err
	}
	data, err := eventlog.ToCSV(events, lr.Book.Assumptions.Resolve())
	if err != nil {
		return err
	}
	return writeOutput(flagOutput, data)
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // exports are meant to be shared
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Wrote %s\n", path)
	}
	return nil
}
