package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/logger"
)

// loadSite parses the -config flag of a subcommand and builds the Site.
func loadSite(name string, args []string) (*pubsite.Site, *zap.Logger, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", "site.yaml", "Path to the site configuration file")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	cfg, err := pubsite.LoadConfig(*configPath)
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(cfg.Log)
	return pubsite.New(cfg, pubsite.WithLogger(log)), log, nil
}

func runBuild(args []string) error {
	site, log, err := loadSite("build", args)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := site.Build(ctx)
	if err != nil {
		return err
	}
	for _, l := range report.Locales {
		fmt.Printf("  %-6s %3d posts  %3d tags  %3d skipped  -> %s\n", l.Code, l.Posts, l.Tags, l.Skipped, l.Feed)
	}
	fmt.Printf("Built %d pages (%d files) in %s\n", report.Pages, len(report.Files), report.Duration.Round(time.Millisecond))
	return nil
}

func runServe(args []string) error {
	site, log, err := loadSite("serve", args)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := site.Build(ctx)
	if err != nil {
		return err
	}
	store, err := pubsite.NewStore(site.Config.IndexPath)
	if err != nil {
		return fmt.Errorf("pubsite: open index: %w", err)
	}
	defer store.Close()

	srv := pubsite.NewServer(site, store, report.Snapshot)

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				report, err := site.Build(ctx)
				if err != nil {
					log.Error("rebuild failed", zap.Error(err))
					continue
				}
				srv.Reload(report.Snapshot)
				log.Info("rebuilt")
			}
		}
	}()

	return srv.Start(ctx)
}

func runCheck(args []string) error {
	site, log, err := loadSite("check", args)
	if err != nil {
		return err
	}
	defer log.Sync()

	checks, err := site.CheckFeeds(context.Background())
	if err != nil {
		return err
	}
	failed := 0
	for _, fc := range checks {
		status := "ok"
		if !fc.OK() {
			status = "FAIL"
			failed++
		}
		fmt.Printf("%-4s %-6s %s (%d items)\n", status, fc.Locale, fc.Path, fc.Items)
		for _, p := range fc.Problems {
			fmt.Printf("       %s\n", p)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d feed(s) failed validation", failed)
	}
	return nil
}
