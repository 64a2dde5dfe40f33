package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/calvinalkan/vwplan/internal/config"
	"github.com/calvinalkan/vwplan/internal/fs"
	"github.com/calvinalkan/vwplan/internal/plan"

	flag "github.com/spf13/pflag"
)

// dateLayout accepts zero-padded and unpadded dates (2024-03-07, 2024-3-7).
const dateLayout = "2006-1-2"

var (
	errInvalidDate    = errors.New("invalid date (want YYYY-MM-DD)")
	errUnexpectedArgs = errors.New("unexpected arguments")
	errScratchBusy    = errors.New("scratch directory is in use by another vwplan run")
	errConflicting    = errors.New("--stdout and --print-config are mutually exclusive")
)

// now is the clock used for the default date.
var now = time.Now

// PlanCmd returns the root command that builds a plan.
func PlanCmd(env map[string]string) *Command {
	flags := flag.NewFlagSet("vwplan", flag.ContinueOnError)
	flags.StringP("date", "d", "", "Plan date as YYYY-MM-DD (default today)")
	flags.StringP("config", "c", "", "Use specified config file")
	flags.StringP("cwd", "C", "", "Run as if started in `dir`")
	flags.String("temp-path", "", "Scratch `dir` for tag buffers (overrides temp_path)")
	flags.Bool("strict", false, "Fail on malformed tag index lines instead of skipping them")
	flags.Bool("fail-fast", false, "Fail when a tagged source cannot be rendered")
	flags.Bool("stdout", false, "Print the plan instead of writing the diary file")
	flags.Bool("print-config", false, "Show resolved configuration and generated tags")
	flags.BoolP("verbose", "v", false, "Log debug details to stderr")

	return &Command{
		Flags: flags,
		Usage: "vwplan [flags]",
		Short: "Generate a daily plan page from wiki tags",
		Long: `vwplan - generate a daily plan page from wiki tags

Reads the wiki's tag index, keeps entries whose tag matches one of the
configured templates for the plan date, and writes <wiki_path>/<diary_dir>/<date>.wiki.

Without --config, the first existing file is used from:
  $VWPLAN_CONFIG, $XDG_CONFIG_HOME/vwplan/config.json (~/.config/vwplan/config.json),
  $HOME/.vwplan_conf.json, /etc/vwplan_conf.json`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execPlan(io, flags, env, args)
		},
	}
}

func execPlan(io *IO, flags *flag.FlagSet, env map[string]string, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %s", errUnexpectedArgs, strings.Join(args, " "))
	}

	dateStr, _ := flags.GetString("date")
	configPath, _ := flags.GetString("config")
	workDir, _ := flags.GetString("cwd")
	tempPath, _ := flags.GetString("temp-path")
	strict, _ := flags.GetBool("strict")
	failFast, _ := flags.GetBool("fail-fast")
	toStdout, _ := flags.GetBool("stdout")
	printConfig, _ := flags.GetBool("print-config")
	verbose, _ := flags.GetBool("verbose")

	if toStdout && printConfig {
		return errConflicting
	}

	date, err := parseDate(dateStr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDir:          workDir,
		ConfigPath:       configPath,
		TempPathOverride: tempPath,
		Env:              env,
	})
	if err != nil {
		return err
	}

	if printConfig {
		return execPrintConfig(io, cfg, date)
	}

	if err := cfg.CheckWikiRoot(); err != nil {
		return err
	}

	fsys := fs.NewReal()

	opts := plan.Options{
		Date:      date,
		Sections:  cfg.Sections,
		Templates: cfg.Tags,
		WikiRoot:  cfg.WikiPath,
		IndexPath: cfg.IndexPath(),
		FS:        fsys,
		Logger:    newLogger(io, verbose),
		Strict:    strict,
		FailFast:  failFast,
		OnWarning: func(err error) {
			io.Warn(err.Error())
		},
	}

	if cfg.TempPath != "" {
		lock, err := fs.TryLock(fsys, cfg.TempPath)
		if err != nil {
			if errors.Is(err, fs.ErrWouldBlock) {
				return fmt.Errorf("%w: %s", errScratchBusy, cfg.TempPath)
			}

			return err
		}
		defer lock.Close()

		buffers, err := plan.NewScratchBuffers(fsys, cfg.TempPath)
		if err != nil {
			return err
		}

		opts.Buffers = buffers
	}

	if toStdout {
		p, err := plan.Build(opts)
		if err != nil {
			return err
		}

		doc, err := p.Document()
		if err != nil {
			return err
		}

		io.Printf("%s", doc)

		return nil
	}

	res, err := plan.Run(opts, cfg.TargetPath(date))
	if err != nil {
		return err
	}

	io.Println(res.Target)

	return nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		y, m, d := now().Date()

		return time.Date(y, m, d, 0, 0, 0, 0, time.Local), nil
	}

	date, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", errInvalidDate, s)
	}

	return date, nil
}

func newLogger(io *IO, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(io.ErrWriter(), &slog.HandlerOptions{Level: level}))
}
