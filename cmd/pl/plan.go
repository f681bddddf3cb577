package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"planline/internal/app"
	"planline/internal/domain"
	"planline/internal/summary"
)

func homeCmd() *cobra.Command {
	var cards bool
	cmd := &cobra.Command{
		Use:   "home",
		Short: "Show the home dashboard of the active plan",
		Long:  "Figures marked with * are placeholders with no data source yet.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if cards {
					in, err := a.Store.Intensities(ctx)
					if err != nil {
						return err
					}
					if viper.GetBool("json") {
						return printJSON(in)
					}
					tw := newTable("Card", "Intensity")
					tw.AppendRows([]table.Row{
						{"Programme", in.Programme}, {"Plan content", in.PlanContent}, {"Scrutiny", in.Scrutiny},
						{"Evidence", in.Evidence}, {"Places", in.Places}, {"Scenarios", in.Scenarios},
					})
					tw.Render()
					return nil
				}
				h, err := a.Store.SummarizeHome(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(h)
				}
				printHome(h)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&cards, "cards", false, "show card intensities only")
	return cmd
}

func pending[T any](p summary.Pending[T]) string {
	if p.ComputePending {
		return fmt.Sprintf("%v*", p.Value)
	}
	return fmt.Sprint(p.Value)
}

func printHome(h summary.HomeSummary) {
	fmt.Printf("Stage: %s (%s)\n", h.Stage.Label, h.Stage.Status)
	gates := make([]string, 0, len(h.Gates))
	for _, g := range h.Gates {
		gates = append(gates, fmt.Sprintf("%s %s", g.ID, g.Status))
	}
	fmt.Printf("Gates: %s | blocking: %d | drift: %s\n", strings.Join(gates, ", "), h.Blocking, pending(h.Drift))
	tw := newTable("Next date", "Label", "Type")
	for _, d := range h.NextDates {
		tw.AppendRow(table.Row{d.Date, d.Label, d.Type})
	}
	tw.Render()
	fmt.Printf("Reading: %s (revised %s)\n", h.Reading.Label, pending(h.Reading.LastRevised))
	for _, p := range h.ScrutinyPoints {
		fmt.Printf("  [%s] %s\n", p.Severity, p.Label)
	}
	if len(h.WhereItBites) > 0 {
		fmt.Printf("Where it bites: %s\n", strings.Join(h.WhereItBites, ", "))
	}
	fmt.Printf("Evidence: %d final, %d draft, %s missing\n", h.Evidence.Final, h.Evidence.Draft, pending(h.Evidence.Missing))
	fmt.Printf("Scenarios: %d active, %s stale\n", h.Scenarios.Active, pending(h.Scenarios.Stale))
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "plan", Short: "List and switch plans"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				active, err := a.Store.ActivePlan(ctx)
				if err != nil {
					return err
				}
				plans := a.Store.ListPlans()
				if viper.GetBool("json") {
					return printJSON(map[string]any{"active": active.ID, "plans": plans})
				}
				tw := newTable("", "ID", "Name", "Authority", "Status")
				for _, p := range plans {
					mark := ""
					if p.ID == active.ID {
						mark = "*"
					}
					tw.AppendRow(table.Row{mark, p.ID, p.Name, p.Authority, p.Status})
				}
				tw.Render()
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "use <plan-id>",
		Short: "Make a plan active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				p, err := a.Store.SwitchPlan(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(p)
				}
				fmt.Printf("active plan: %s (%s)\n", p.Name, p.ID)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "state",
		Short: "Dump the full state of the active plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				st, err := a.Store.State(ctx)
				if err != nil {
					return err
				}
				return printJSON(st)
			})
		},
	})
	return cmd
}

func stageCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "stage", Short: "Statutory stage ribbon"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show every stage relative to the active one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				ribbon, err := a.Store.StageRibbon(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(ribbon)
				}
				tw := newTable("Key", "Stage", "Shell", "Progress")
				for _, s := range ribbon {
					tw.AppendRow(table.Row{s.Key, s.Label, s.Shell, s.Progress})
				}
				tw.Render()
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <stage>",
		Short: "Set the active stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				s, err := a.Store.SetStage(ctx, domain.StageKey(args[0]))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(s)
				}
				fmt.Printf("active stage: %s (opens %s)\n", s.Label, s.Shell)
				return nil
			})
		},
	})
	return cmd
}

func readingCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "reading", Short: "Reading profiles"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List reading profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				current, err := a.Store.Reading(ctx)
				if err != nil {
					return err
				}
				profiles := a.Store.ReadingProfiles()
				if viper.GetBool("json") {
					return printJSON(profiles)
				}
				tw := newTable("", "ID", "Label", "Summary")
				for _, r := range profiles {
					mark := ""
					if r.ID == current.ID {
						mark = "*"
					}
					tw.AppendRow(table.Row{mark, r.ID, r.Label, r.Summary})
				}
				tw.Render()
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the selected reading profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				r, err := a.Store.Reading(ctx)
				if err != nil {
					return err
				}
				return printJSON(r)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "use <reading-id>",
		Short: "Select a reading profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				r, err := a.Store.SelectReading(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(r)
				}
				fmt.Println("reading:", r.Label)
				return nil
			})
		},
	})
	return cmd
}

func pressuresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pressures",
		Short: "List advisory pressures",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				ps := a.Store.Pressures()
				if viper.GetBool("json") {
					return printJSON(ps)
				}
				tw := newTable("Severity", "Title", "Impacts", "Route")
				for _, p := range ps {
					tw.AppendRow(table.Row{p.Severity, p.Title, strings.Join(p.Impacts, ", "), p.PrimaryRoute})
				}
				tw.Render()
				return nil
			})
		},
	}
}
