package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"planline/internal/app"
	"planline/internal/domain"
)

func consultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consult",
		Short: "Consultation rounds and representations",
		Long:  "Rounds are scoping, content and proposed. Representations move unread -> triaged -> summarized; a summary publishes only once none are unread.",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <type>",
		Short: "Show a consultation with its representations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				c, err := a.Store.GetConsultation(ctx, domain.ConsultationType(args[0]))
				if err != nil {
					return err
				}
				return printConsultation(c)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "stats <type>",
		Short: "Representation counts and themes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct := domain.ConsultationType(args[0])
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				stats, err := a.Store.ConsultationStats(ctx, ct)
				if err != nil {
					return err
				}
				themes, err := a.Store.Themes(ctx, ct)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"stats": stats, "themes": themes})
				}
				tw := newTable("Total", "Unread", "Triaged", "Summarized", "Support", "Concern", "Object")
				tw.AppendRow(table.Row{stats.Total, stats.Unread, stats.Triaged, stats.Summarized, themes.Support, themes.Concern, themes.Object})
				tw.Render()
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <type>",
		Short: "Log a new representation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				rep, err := a.Store.AddRepresentation(ctx, domain.ConsultationType(args[0]))
				if err != nil {
					return err
				}
				return printRepresentations([]domain.Representation{rep})
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "advance <type> <rep-id> <status>",
		Short: "Move a representation to triaged or summarized",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				rep, err := a.Store.SetRepresentationStatus(ctx, domain.ConsultationType(args[0]), args[1], domain.RepresentationStatus(args[2]))
				if err != nil {
					return err
				}
				return printRepresentations([]domain.Representation{rep})
			})
		},
	})
	cmd.AddCommand(consultEditCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "draft <type> <text>",
		Short: "Save the summary draft",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				c, err := a.Store.SetSummaryDraft(ctx, domain.ConsultationType(args[0]), args[1])
				if err != nil {
					return err
				}
				return printConsultation(c)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "publish <type>",
		Short: "Publish the consultation summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				c, err := a.Store.PublishConsultationSummary(ctx, domain.ConsultationType(args[0]))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(c)
				}
				fmt.Printf("%s summary published %s\n", c.Type, c.SummaryPublishedAt)
				return nil
			})
		},
	})
	return cmd
}

func consultEditCmd() *cobra.Command {
	var respondent, summary string
	cmd := &cobra.Command{
		Use:   "edit <type> <rep-id>",
		Short: "Edit a representation's respondent or summary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if respondent == "" && summary == "" {
				return fmt.Errorf("--respondent or --summary required")
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				rep, err := a.Store.UpdateRepresentation(ctx, domain.ConsultationType(args[0]), args[1], respondent, summary)
				if err != nil {
					return err
				}
				return printRepresentations([]domain.Representation{rep})
			})
		},
	}
	cmd.Flags().StringVar(&respondent, "respondent", "", "respondent name")
	cmd.Flags().StringVar(&summary, "summary", "", "summary of the representation")
	return cmd
}

func printConsultation(c domain.Consultation) error {
	if viper.GetBool("json") {
		return printJSON(c)
	}
	published := "not published"
	if c.SummaryPublishedAt.IsPublished() {
		published = "published " + c.SummaryPublishedAt.String()
	}
	fmt.Printf("%s consultation: summary %s\n", c.Type, published)
	if c.SummaryDraft != "" {
		fmt.Printf("Draft: %s\n", c.SummaryDraft)
	}
	return printRepresentations(c.Representations)
}

func printRepresentations(reps []domain.Representation) error {
	if viper.GetBool("json") {
		return printJSON(reps)
	}
	tw := newTable("ID", "Received", "Respondent", "Status", "Summary")
	for _, r := range reps {
		tw.AppendRow(table.Row{r.ID, r.ReceivedAt, r.Respondent, r.Status, r.Summary})
	}
	tw.Render()
	return nil
}
