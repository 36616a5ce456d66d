package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/tanush-yadav/automate-founder-flow/internal/collect"
	"github.com/tanush-yadav/automate-founder-flow/internal/config"
	"github.com/tanush-yadav/automate-founder-flow/internal/dispatch"
	"github.com/tanush-yadav/automate-founder-flow/internal/email"
	"github.com/tanush-yadav/automate-founder-flow/internal/metrics"
	"github.com/tanush-yadav/automate-founder-flow/internal/pipeline"
	"github.com/tanush-yadav/automate-founder-flow/internal/search"
	"github.com/tanush-yadav/automate-founder-flow/internal/secrets"
	"github.com/tanush-yadav/automate-founder-flow/internal/store"
	"github.com/tanush-yadav/automate-founder-flow/internal/store/postgres"
	"github.com/tanush-yadav/automate-founder-flow/internal/store/sqlite"
)

const usage = `usage: founderflow <command> [flags]

commands:
  run "<query>"             parse a hiring query, search, and collect leads
  send-emails -job <id>     compose and schedule outreach for a finished run
  dispatch [-once]          deliver due emails, once or on a schedule
  templates                 list stored email templates
  set-key <account> <key>   store an API key (serpapi, apollo, resend)
`

func main() {
	log.SetFlags(log.LstdFlags)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Data dir: use env if provided, else local folder.
	dataDir := os.Getenv("FOUNDERFLOW_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}
	cfg, err := config.Load(userCfgPath)
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "run":
		err = cmdRun(ctx, cfg, dataDir, args)
	case "send-emails":
		err = cmdSendEmails(ctx, cfg, dataDir, args)
	case "dispatch":
		err = cmdDispatch(ctx, cfg, dataDir, args)
	case "templates":
		err = cmdTemplates(ctx, cfg, dataDir)
	case "set-key":
		err = cmdSetKey(args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func openStore(ctx context.Context, cfg config.Config, dataDir string) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return postgres.Open(ctx, cfg.Store.DSN)
	case "sqlite":
		return sqlite.Open(filepath.Join(dataDir, cfg.Store.Path))
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func newRunner(cfg config.Config, st store.Store) (*pipeline.Runner, error) {
	searchKey, err := secrets.APIKey(secrets.AccountSearch)
	if err != nil {
		return nil, err
	}
	contactsKey, err := secrets.APIKey(secrets.AccountContacts)
	if err != nil {
		return nil, err
	}

	limiter := collect.NewHostLimiter(cfg.Scrape.RequestsPerSec, cfg.Scrape.Burst)
	resolver := collect.NewApollo(cfg.Contacts.Endpoint, contactsKey)

	sched, err := email.NewScheduler(cfg.Email.Timezone, cfg.Email.StartHour, cfg.Email.EndHour)
	if err != nil {
		return nil, err
	}

	return &pipeline.Runner{
		Store: st,
		Search: &search.Executor{
			Provider: search.NewSerpAPI(cfg.Search.Endpoint, searchKey),
			JobPath:  cfg.Search.JobPath,
		},
		Collect:    collect.New(cfg.Search.CompanyPath, limiter, resolver),
		Scheduler:  sched,
		TargetSite: cfg.Search.TargetSite,
	}, nil
}

func cmdRun(ctx context.Context, cfg config.Config, dataDir string, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("run needs exactly one quoted query")
	}

	st, err := openStore(ctx, cfg, dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	runner, err := newRunner(cfg, st)
	if err != nil {
		return err
	}

	run, err := runner.Run(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	leads, err := st.LeadsForJob(ctx, run.ID)
	if err != nil {
		return err
	}
	fmt.Printf("job %s finished: %s (%d leads)\n", run.ID, run.Status, len(leads))
	for _, l := range leads {
		fmt.Printf("  %-30s %-25s %s\n", l.CompanyName, l.ContactName, l.Status)
	}
	return nil
}

func cmdSendEmails(ctx context.Context, cfg config.Config, dataDir string, args []string) error {
	fs := flag.NewFlagSet("send-emails", flag.ExitOnError)
	jobID := fs.String("job", "", "job run id")
	tmpl := fs.String("template", cfg.Email.Template, "template name")
	fs.Parse(args)
	if *jobID == "" {
		return fmt.Errorf("send-emails needs -job <id>")
	}

	st, err := openStore(ctx, cfg, dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	runner, err := newRunner(cfg, st)
	if err != nil {
		return err
	}
	return runner.SendEmails(ctx, *jobID, *tmpl)
}

// cmdDispatch delivers due emails. With -once it drains the queue and exits;
// otherwise it runs on the configured schedule until interrupted. A file lock
// keeps a second dispatcher on the same data dir from double-sending.
func cmdDispatch(ctx context.Context, cfg config.Config, dataDir string, args []string) error {
	fs := flag.NewFlagSet("dispatch", flag.ExitOnError)
	once := fs.Bool("once", false, "process due emails once and exit")
	fs.Parse(args)

	lock := flock.New(filepath.Join(dataDir, "dispatch.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("dispatch lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another dispatcher is already running for %s", dataDir)
	}
	defer lock.Unlock()

	st, err := openStore(ctx, cfg, dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	emailKey, err := secrets.APIKey(secrets.AccountEmail)
	if err != nil {
		return err
	}
	sender := email.NewResend(cfg.Email.Endpoint, emailKey, cfg.Email.From)
	d := dispatch.New(st, sender, cfg.Dispatch.MaxRetries)

	if *once {
		return d.ProcessDue(ctx)
	}

	var msrv *metrics.Server
	if cfg.App.MetricsPort > 0 {
		msrv = metrics.NewServer(cfg.App.MetricsPort)
		msrv.Start()
		defer msrv.Stop()
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Dispatch.Schedule, func() {
		if err := d.ProcessDue(ctx); err != nil {
			log.Printf("[dispatch] process due: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("dispatch schedule %q: %w", cfg.Dispatch.Schedule, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.Start()
		<-ctx.Done()
		<-c.Stop().Done()
		return nil
	})

	log.Printf("[dispatch] running every %q (data=%s)", cfg.Dispatch.Schedule, dataDir)

	// Drain anything already due before the first tick.
	if err := d.ProcessDue(ctx); err != nil {
		log.Printf("[dispatch] process due: %v", err)
	}

	return g.Wait()
}

func cmdTemplates(ctx context.Context, cfg config.Config, dataDir string) error {
	st, err := openStore(ctx, cfg, dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	templates, err := st.ListTemplates(ctx)
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		fmt.Println("no templates stored yet")
		return nil
	}
	for _, tm := range templates {
		fmt.Printf("%-25s %s\n", tm.Name, tm.Subject)
	}
	return nil
}

func cmdSetKey(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("set-key needs <account> <key>")
	}
	if err := secrets.SetAPIKey(args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("stored key for %s\n", args[0])
	return nil
}
