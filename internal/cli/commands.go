package cli

import (
	"errors"
	"fmt"

	"github.com/linskybing/regscan/internal/application"
	"github.com/linskybing/regscan/internal/config"
	"github.com/linskybing/regscan/internal/console"
	"github.com/linskybing/regscan/internal/progress"
	"github.com/linskybing/regscan/internal/snapshot"
	"github.com/spf13/cobra"
)

func (a *app) scanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [PROFILE] [REGION]",
		Short: "Scan every region (or one) and refresh the local snapshot",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := application.ScanRequest{Profile: a.profileArg(args)}
			if len(args) > 1 {
				req.Region = args[1]
			}
			return a.withServices(func(svc *application.Services, bus *progress.Bus) error {
				p := a.printer()
				subs := bus.SubscribeAll(p.Progress)
				defer func() {
					for _, s := range subs {
						bus.Unsubscribe(s)
					}
				}()
				summary, err := svc.Scanner.Run(cmd.Context(), req)
				if err != nil {
					return fmt.Errorf("scan: %w", err)
				}
				p.ScanSummary(summary)
				return nil
			})
		},
	}
}

func (a *app) lsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List repositories in the local snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withServices(func(svc *application.Services, _ *progress.Bus) error {
				repos, err := svc.Inventory.ListRepositories(cmd.Context())
				if err != nil {
					return err
				}
				a.printer().Repositories(repos)
				return nil
			})
		},
	}
}

func (a *app) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show storage totals and repository rankings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withServices(func(svc *application.Services, _ *progress.Bus) error {
				st, err := svc.Inventory.Stats(cmd.Context(), a.cfg.TopN)
				if err != nil {
					return err
				}
				a.printer().Stats(st)
				return nil
			})
		},
	}
}

func (a *app) analyseCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "analyse [REPOSITORY]",
		Aliases: []string{"analyze"},
		Short:   "Group image tags by naming convention",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			return a.withServices(func(svc *application.Services, _ *progress.Bus) error {
				groups, err := svc.Inventory.Analyse(cmd.Context(), name)
				if err != nil {
					return fmt.Errorf("analyse %s: %w", name, err)
				}
				a.printer().TagGroups(groups)
				return nil
			})
		},
	}
}

func (a *app) suggestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest [PROFILE] [REPOSITORY...]",
		Short: "Offer to delete never-pulled images",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := a.profileArg(args)
			var names []string
			if len(args) > 1 {
				names = args[1:]
			}
			return a.withServices(func(svc *application.Services, _ *progress.Bus) error {
				res, err := svc.Cleanup.Suggest(cmd.Context(), profile, names, console.NewPrompt(a.in, a.out))
				if errors.Is(err, application.ErrNothingToDelete) {
					fmt.Fprintln(a.out, "No never-pulled images found.")
					return nil
				}
				if res != nil {
					a.printer().CleanupResult(res)
				}
				return err
			})
		},
	}
}

func (a *app) backupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Upload the local snapshot to an S3-compatible bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.DBDriver != "" && a.cfg.DBDriver != config.DriverSQLite {
				return fmt.Errorf("backup supports the sqlite driver only, got %q", a.cfg.DBDriver)
			}
			store, err := NewObjectStore(a.cfg)
			if err != nil {
				return err
			}
			key, err := snapshot.NewUploader(store, a.cfg.MinioBucket).Upload(cmd.Context(), a.cfg.DBPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Snapshot uploaded to %s/%s\n", a.cfg.MinioBucket, key)
			return nil
		},
	}
}
