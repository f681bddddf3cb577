package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"planline/internal/app"
	"planline/internal/dates"
	"planline/internal/domain"
	"planline/internal/store"
)

func milestoneCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "milestone", Short: "Manage programme milestones"}
	cmd.AddCommand(milestoneListCmd())
	cmd.AddCommand(milestoneAddCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "date <milestone-id> <YYYY-MM-DD>",
		Short: "Move a milestone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dates.ParseDate(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				m, err := a.Store.SetMilestoneDate(ctx, args[0], d)
				if err != nil {
					return err
				}
				return printMilestones([]domain.Milestone{m})
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rename <milestone-id> <label>",
		Short: "Rename a milestone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				m, err := a.Store.RenameMilestone(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return printMilestones([]domain.Milestone{m})
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <milestone-id>",
		Short: "Remove a milestone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Store.RemoveMilestone(ctx, args[0]); err != nil {
					return err
				}
				fmt.Println("removed", args[0])
				return nil
			})
		},
	})
	return cmd
}

func milestoneListCmd() *cobra.Command {
	var upcoming bool
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List milestones in date order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				var (
					ms  []domain.Milestone
					err error
				)
				if upcoming {
					ms, err = a.Store.UpcomingMilestones(ctx, limit)
				} else {
					ms, err = a.Store.ListMilestones(ctx)
				}
				if err != nil {
					return err
				}
				return printMilestones(ms)
			})
		},
	}
	cmd.Flags().BoolVar(&upcoming, "upcoming", false, "only milestones dated today or later")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum upcoming milestones (default from config)")
	return cmd
}

func milestoneAddCmd() *cobra.Command {
	var label, date, kind string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a milestone",
		RunE: func(cmd *cobra.Command, args []string) error {
			var d dates.Date
			if date != "" {
				parsed, err := dates.ParseDate(date)
				if err != nil {
					return err
				}
				d = parsed
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				m, err := a.Store.AddMilestone(ctx, label, d, domain.MilestoneKind(kind))
				if err != nil {
					return err
				}
				return printMilestones([]domain.Milestone{m})
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "milestone label")
	cmd.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&kind, "kind", "", "programme, consultation, gateway or decision")
	return cmd
}

func printMilestones(ms []domain.Milestone) error {
	if viper.GetBool("json") {
		return printJSON(ms)
	}
	tw := newTable("ID", "Date", "Label", "Kind")
	for _, m := range ms {
		tw.AppendRow(table.Row{m.ID, m.Date, m.Label, m.Kind})
	}
	tw.Render()
	return nil
}

func timelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Statutory timeline: timetable, notice, scoping and vision",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show timeline stamps",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				st, err := a.Store.State(ctx)
				if err != nil {
					return err
				}
				return printTimeline(st)
			})
		},
	})
	steps := []struct {
		use, short string
		fn         func(*store.Store, context.Context) (domain.PlanState, error)
	}{
		{"publish-timetable", "Publish the timetable", (*store.Store).PublishTimetable},
		{"publish-notice", "Publish the notice of commencement", (*store.Store).PublishNotice},
		{"publish-vision", "Publish vision and outcomes", (*store.Store).PublishVisionOutcomes},
	}
	for _, s := range steps {
		fn := s.fn
		cmd.AddCommand(&cobra.Command{
			Use:   s.use,
			Short: s.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
					st, err := fn(a.Store, ctx)
					if err != nil {
						return err
					}
					return printTimeline(st)
				})
			},
		})
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "close-scoping <YYYY-MM-DD>",
		Short: "Record when the scoping consultation ends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			end, err := dates.ParseDate(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				st, err := a.Store.CloseScoping(ctx, end)
				if err != nil {
					return err
				}
				return printTimeline(st)
			})
		},
	})
	return cmd
}

func printTimeline(st domain.PlanState) error {
	if viper.GetBool("json") {
		return printJSON(map[string]any{
			"timetable_published_at":       st.TimetablePublishedAt,
			"notice_published_at":          st.NoticePublishedAt,
			"scoping_end":                  st.ScopingEnd,
			"vision_outcomes_published_at": st.VisionOutcomesPublishedAt,
		})
	}
	tw := newTable("Step", "When")
	tw.AppendRows([]table.Row{
		{"Timetable published", orDash(st.TimetablePublishedAt.String())},
		{"Notice published", orDash(st.NoticePublishedAt.String())},
		{"Scoping ends", orDash(st.ScopingEnd.String())},
		{"Vision & outcomes published", orDash(st.VisionOutcomesPublishedAt.String())},
	})
	tw.Render()
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
