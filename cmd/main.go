package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"

	"github.com/brettbedarf/foldertree"
	"github.com/brettbedarf/foldertree/api"
	"github.com/brettbedarf/foldertree/config"
	"github.com/brettbedarf/foldertree/internal/mount"
	"github.com/brettbedarf/foldertree/internal/repl"
	"github.com/brettbedarf/foldertree/internal/util"
	"github.com/brettbedarf/foldertree/render"
	"github.com/brettbedarf/foldertree/requests"
	"github.com/brettbedarf/foldertree/session"
)

// configAddr as --http value means the address from the config
const configAddr = "config"

type Options struct {
	Verbose int    `short:"v" long:"verbose" description:"Log verbosity between 1 (error) and 5 (trace)" default:"3"`
	Config  string `short:"c" long:"config" description:"Path to a YAML or JSON config file"`
	Script  string `short:"s" long:"script" description:"Path to a YAML or JSON command script applied at startup"`
	Mount   string `short:"m" long:"mount" description:"Mount the folder tree at this directory"`
	Umount  bool   `short:"u" long:"umount" description:"Unmount the mount point first if needed. Useful for debuggers that don't exit properly."`
	HTTP    string `long:"http" description:"Serve the HTTP API; optionally on this address" optional:"yes" optional-value:"config"`
	NoREPL  bool   `long:"no-repl" description:"Do not read commands from stdin"`
	Version bool   `short:"V" long:"version" description:"Show version"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "foldertree: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Name = "foldertree"
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			return nil
		}
		return err
	}
	if opts.Version {
		fmt.Println(foldertree.Version)
		return nil
	}

	util.InitializeLogger(util.LevelFromVerbose(opts.Verbose), nil)
	logger := util.GetLogger("main")

	cfg, err := loadConfig(opts, parser.FindOptionByLongName("verbose").IsSet())
	if err != nil {
		return err
	}
	util.InitializeLogger(cfg.LogLvl, nil)
	logger = util.GetLogger("main")
	logger.Info().
		Str("config", opts.Config).
		Str("script", opts.Script).
		Str("mnt", opts.Mount).
		Str("http", opts.HTTP).
		Msg("Folder tree initializing")

	sess := session.New(cfg)
	if opts.Script != "" {
		applyScript(sess, opts.Script)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	if opts.HTTP != "" {
		addr := opts.HTTP
		if addr == configAddr {
			addr = cfg.HTTPAddr
		}
		srv := api.New(sess)
		g.Go(func() error {
			return srv.ListenAndServe(addr)
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if opts.Mount != "" {
		if opts.Umount {
			// ignore error here if not already mounted
			exec.Command("fusermount", "-u", opts.Mount).Run() // nolint:errcheck
		}
		m := mount.New(sess)
		if err := m.Serve(opts.Mount); err != nil {
			return fmt.Errorf("failed to mount %s: %w", opts.Mount, err)
		}
		g.Go(func() error {
			<-gctx.Done()
			logger.Info().Str("mountpoint", opts.Mount).Msg("Unmounting filesystem")
			return m.Unmount()
		})
	}

	switch {
	case !opts.NoREPL:
		g.Go(func() error {
			defer stop()
			return repl.New(sess, os.Stdin, os.Stdout).Run(gctx)
		})
	case opts.HTTP == "" && opts.Mount == "":
		// nothing to serve; print the result of the script
		fmt.Println(render.Render(sess.Snapshot()))
		return nil
	}

	err = g.Wait()
	logger.Info().Msg("Folder tree stopped")
	return err
}

// loadConfig merges the config file (if any) with the cli flags; flags win
func loadConfig(opts Options, verboseSet bool) (*config.Config, error) {
	override := &config.ConfigOverride{}
	if opts.Config != "" {
		fileOverride, err := config.LoadConfigOverrideFile(opts.Config)
		if err != nil {
			return nil, err
		}
		override = fileOverride
	}
	if verboseSet || override.LogLvl == nil {
		override.LogLvl = &opts.Verbose
	}

	cfg := config.NewConfig(override)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", opts.Config, err)
	}
	return cfg, nil
}

// applyScript runs every command in the script; failures are logged and skipped
func applyScript(sess *session.Session, path string) {
	logger := util.GetLogger("main")

	cmds, err := requests.LoadScript(path)
	if err != nil {
		logger.Error().Err(err).Str("script", path).Msg("Some script commands were skipped")
	}
	logger.Debug().Str("script", path).Int("commands", len(cmds)).Msg("Script loaded")

	applied := 0
	for _, cmd := range cmds {
		out, err := sess.Apply(cmd)
		if err != nil {
			logger.Debug().Interface("command", cmd).Err(err).Msg("Failed to apply script command")
			continue
		}
		if out.Message != "" {
			logger.Warn().Interface("command", cmd).Msg(out.Message)
			continue
		}
		applied++
	}
	logger.Info().Int("applied", applied).Int("total", len(cmds)).Msg("Applied command script")
}
