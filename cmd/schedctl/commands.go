package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"appointment-scheduler/internal/calendar"
	"appointment-scheduler/internal/store"
	"appointment-scheduler/internal/timeslot"
)

type rootOptions struct {
	tz string
}

func (o *rootOptions) location() (*time.Location, error) {
	if o.tz == "" {
		return time.Local, nil
	}
	return time.LoadLocation(o.tz)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "schedctl",
		Short:         "Appointment scheduler tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.tz, "tz", os.Getenv("SCHEDULER_TZ"), "IANA zone to compute in (default: local)")

	cmd.AddCommand(newWindowCmd(opts), newWeeksCmd(), newSlotsCmd(opts), newMigrateCmd())
	return cmd
}

func newWindowCmd(opts *rootOptions) *cobra.Command {
	var (
		mode  string
		index int
		year  int
	)
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Print the date range of a calendar view",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := opts.location()
			if err != nil {
				return err
			}
			m, err := calendar.ParseMode(mode)
			if err != nil {
				return err
			}
			if year == 0 {
				year = time.Now().In(loc).Year()
			}
			w, err := calendar.Compute(m, index, year, loc)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, w.Label)
			if w.Unfiltered {
				fmt.Fprintln(out, "unfiltered")
				return nil
			}
			end := "exclusive"
			if w.EndInclusive {
				end = "inclusive"
			}
			fmt.Fprintf(out, "%s .. %s (%s)\n", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"), end)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "month", "month|week|year|all")
	cmd.Flags().IntVar(&index, "index", 1, "month (1-12) or week number")
	cmd.Flags().IntVar(&year, "year", 0, "year (default: current)")
	return cmd
}

func newWeeksCmd() *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "weeks",
		Short: "Print the number of ISO weeks in a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = time.Now().Year()
			}
			fmt.Fprintln(cmd.OutOrStdout(), calendar.WeeksInYear(year))
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year (default: current)")
	return cmd
}

func newSlotsCmd(opts *rootOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List the selectable times of a day; * marks business hours",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := opts.location()
			if err != nil {
				return err
			}
			d := timeslot.DateOf(time.Now().In(loc))
			if date != "" {
				if d, err = timeslot.ParseDate(date); err != nil {
					return err
				}
			}
			hours, err := timeslot.DefaultBusinessHours()
			if err != nil {
				return err
			}
			open, closing := hours.Bounds(d, loc)

			out := cmd.OutOrStdout()
			for _, s := range timeslot.Grid() {
				at, err := timeslot.Resolve(d, s, loc)
				if err != nil {
					return err
				}
				mark := " "
				if !at.Before(open) && !at.After(closing) {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %2d %s\n", mark, int(s), timeslot.Label(s, loc, at))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "YYYY-MM-DD (default: today)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var dbURL string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if dbURL != "" {
				return nil
			}
			_ = godotenv.Load()
			if dbURL = os.Getenv("DATABASE_URL"); dbURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&dbURL, "database-url", "", "postgres connection url")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.MigrateUp(dbURL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.MigrateDown(dbURL, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	status := &cobra.Command{
		Use:   "status",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, dirty, err := store.MigrationStatus(dbURL)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d dirty=%t\n", v, dirty)
			return nil
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}
