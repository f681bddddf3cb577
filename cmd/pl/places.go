package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"planline/internal/app"
	"planline/internal/domain"
	"planline/internal/store"
)

func siteCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "site", Short: "Sites pipeline: identify, assess, allocate"}

	var stage string
	list := &cobra.Command{
		Use:   "list",
		Short: "List sites",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				sites, err := a.Store.ListSites(ctx, domain.SiteStage(stage))
				if err != nil {
					return err
				}
				return printSites(sites)
			})
		},
	}
	list.Flags().StringVar(&stage, "stage", "", "identify, assess or allocate")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Site counts by stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				stats, err := a.Store.SiteStats(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(stats)
				}
				tw := newTable("Total", "Identify", "Assess", "Allocate", "Allocated ha", "Dwellings")
				tw.AppendRow(table.Row{
					stats.Total,
					stats.ByStage[domain.SiteIdentify], stats.ByStage[domain.SiteAssess], stats.ByStage[domain.SiteAllocate],
					humanize.FormatFloat("#,###.##", stats.AllocatedArea), humanize.Comma(int64(stats.AllocatedCapacity)),
				})
				tw.Render()
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add [name]",
		Short: "Add a site at the identify stage",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				site, err := a.Store.AddSite(ctx, name)
				if err != nil {
					return err
				}
				return printSites([]domain.Site{site})
			})
		},
	})

	var ref, name, notes string
	var area float64
	var capacity int
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			patch := store.SitePatch{
				Ref:   changed[string](f, "ref", ref),
				Name:  changed[string](f, "name", name),
				Notes: changed[string](f, "notes", notes),
			}
			if f.Changed("area") {
				patch.AreaHa = &area
			}
			if f.Changed("capacity") {
				patch.Capacity = &capacity
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				site, err := a.Store.UpdateSite(ctx, args[0], patch)
				if err != nil {
					return err
				}
				return printSites([]domain.Site{site})
			})
		},
	}
	update.Flags().StringVar(&ref, "ref", "", "site reference")
	update.Flags().StringVar(&name, "name", "", "site name")
	update.Flags().StringVar(&notes, "notes", "", "notes")
	update.Flags().Float64Var(&area, "area", 0, "site area in hectares")
	update.Flags().IntVar(&capacity, "capacity", 0, "dwelling capacity")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "advance <id>",
		Short: "Move a site to the next stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				site, err := a.Store.AdvanceSite(ctx, args[0])
				if err != nil {
					return err
				}
				return printSites([]domain.Site{site})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Store.RemoveSite(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("removed %s\n", args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(siteTaskCmd())
	return cmd
}

func siteTaskCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "task", Short: "Environmental and technical study tasks"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				tasks, err := a.Store.ListSiteTasks(ctx)
				if err != nil {
					return err
				}
				return printSiteTasks(tasks)
			})
		},
	})

	var owner string
	add := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a not-started task",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var title string
			if len(args) == 1 {
				title = args[0]
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				task, err := a.Store.AddSiteTask(ctx, title, owner)
				if err != nil {
					return err
				}
				return printSiteTasks([]domain.SiteTask{task})
			})
		},
	}
	add.Flags().StringVar(&owner, "owner", "", "owning team")
	cmd.AddCommand(add)

	var title, newOwner, status string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			patch := store.SiteTaskPatch{
				Title:  changed[string](f, "title", title),
				Owner:  changed[string](f, "owner", newOwner),
				Status: changed[domain.TaskStatus](f, "status", status),
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				task, err := a.Store.UpdateSiteTask(ctx, args[0], patch)
				if err != nil {
					return err
				}
				return printSiteTasks([]domain.SiteTask{task})
			})
		},
	}
	update.Flags().StringVar(&title, "title", "", "task title")
	update.Flags().StringVar(&newOwner, "owner", "", "owning team")
	update.Flags().StringVar(&status, "status", "", "not_started, in_progress or done")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Store.RemoveSiteTask(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("removed %s\n", args[0])
				return nil
			})
		},
	})
	return cmd
}

func printSites(sites []domain.Site) error {
	if viper.GetBool("json") {
		return printJSON(sites)
	}
	tw := newTable("ID", "Ref", "Name", "Stage", "Area (ha)", "Capacity", "Notes")
	for _, s := range sites {
		capacity := "-"
		if s.Capacity != nil {
			capacity = humanize.Comma(int64(*s.Capacity))
		}
		tw.AppendRow(table.Row{s.ID, s.Ref, s.Name, s.Stage, humanize.FormatFloat("#,###.##", s.AreaHa), capacity, s.Notes})
	}
	tw.Render()
	return nil
}

func printSiteTasks(tasks []domain.SiteTask) error {
	if viper.GetBool("json") {
		return printJSON(tasks)
	}
	tw := newTable("ID", "Title", "Owner", "Status")
	for _, t := range tasks {
		tw.AppendRow(table.Row{t.ID, t.Title, t.Owner, t.Status})
	}
	tw.Render()
	return nil
}
