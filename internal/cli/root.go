package cli

import (
	"context"
	goflag "flag"
	"io"

	"github.com/linskybing/regscan/internal/application"
	"github.com/linskybing/regscan/internal/config"
	"github.com/linskybing/regscan/internal/config/db"
	"github.com/linskybing/regscan/internal/console"
	"github.com/linskybing/regscan/internal/domain/image"
	"github.com/linskybing/regscan/internal/progress"
	"github.com/linskybing/regscan/internal/registry"
	"github.com/linskybing/regscan/internal/repository"
	"github.com/linskybing/regscan/internal/snapshot"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"k8s.io/klog/v2"
)

// NewRegistryClient builds the registry client every command uses.
var NewRegistryClient = func(cfg *config.Config) registry.Client {
	return registry.NewECRClient(cfg.AWSDefaultRegion)
}

// NewObjectStore builds the bucket client used by backup.
var NewObjectStore = func(cfg *config.Config) (snapshot.ObjectStore, error) {
	return snapshot.NewMinioClient(cfg)
}

type app struct {
	cfg    *config.Config
	dbPath string
	topN   int
	in     io.Reader
	out    io.Writer
}

// NewRootCommand assembles the regscan command tree. Prompts read from in,
// results are written to out.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: in, out: out}
	root := &cobra.Command{
		Use:           "regscan",
		Short:         "Inventory container registries and clean up never-pulled images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.cfg = config.LoadConfig()
			if cmd.Flags().Changed("db") {
				a.cfg.DBDriver = config.DriverSQLite
				a.cfg.DBPath = a.dbPath
			}
			if cmd.Flags().Changed("top") && a.topN > 0 {
				a.cfg.TopN = a.topN
			}
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	root.PersistentFlags().StringVar(&a.dbPath, "db", "ecr-repos.db", "path of the local SQLite snapshot")
	root.PersistentFlags().IntVar(&a.topN, "top", 20, "number of repositories in each ranking")
	klogFlags := goflag.NewFlagSet("klog", goflag.ContinueOnError)
	klog.InitFlags(klogFlags)
	root.PersistentFlags().AddGoFlagSet(klogFlags)

	root.AddCommand(
		a.scanCommand(),
		a.lsCommand(),
		a.statsCommand(),
		a.analyseCommand(),
		a.suggestCommand(),
		a.serveCommand(),
		a.backupCommand(),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute(ctx context.Context, in io.Reader, out io.Writer) error {
	return NewRootCommand(in, out).ExecuteContext(ctx)
}

func (a *app) grouper() (*image.TagGrouper, error) {
	keywords, err := config.LoadTagKeywords(a.cfg.TagGroupsFile)
	if err != nil {
		return nil, err
	}
	return image.NewTagGrouper(keywords)
}

// withServices opens the store, wires the services and closes the store when fn returns.
func (a *app) withServices(fn func(*application.Services, *progress.Bus) error) error {
	grouper, err := a.grouper()
	if err != nil {
		return err
	}
	return db.WithStore(a.cfg, func(conn *gorm.DB) error {
		bus := progress.NewBus()
		svc := application.New(repository.NewRepositories(conn), NewRegistryClient(a.cfg), bus, grouper, a.cfg.TopN)
		return fn(svc, bus)
	})
}

func (a *app) printer() *console.Printer {
	return console.NewPrinter(a.out)
}

// profileArg returns args[0] when present, otherwise the configured profile.
func (a *app) profileArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return a.cfg.AWSProfile
}
