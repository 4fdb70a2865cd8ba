package cmd

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"time"

	"github.com/a8m/envsubst"
	"github.com/k0sproject/rig"
	goversion "github.com/k0sproject/version"
	"github.com/shiena/ansicolor"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v2"

	"github.com/fedsetup/fedsetup/analytics"
	"github.com/fedsetup/fedsetup/cache"
	"github.com/fedsetup/fedsetup/integration/github"
	"github.com/fedsetup/fedsetup/integration/segment"
	v1beta1 "github.com/fedsetup/fedsetup/pkg/apis/fedsetup.dev/v1beta1"
	"github.com/fedsetup/fedsetup/version"
)

var (
	debugFlag = &cli.BoolFlag{
		Name:    "debug",
		Usage:   "Enable debug logging",
		Aliases: []string{"d"},
		EnvVars: []string{"DEBUG"},
	}

	traceFlag = &cli.BoolFlag{
		Name:    "trace",
		Usage:   "Enable trace logging",
		Aliases: []string{"dd"},
		EnvVars: []string{"TRACE"},
		Hidden:  true,
	}

	configFlag = &cli.StringFlag{
		Name:      "config",
		Usage:     "Path to setup config yaml. Use '-' to read from stdin.",
		Aliases:   []string{"c"},
		Value:     "fedsetup.yaml",
		TakesFile: true,
	}

	forceFlag = &cli.BoolFlag{
		Name:  "force",
		Usage: "Skip the confirmation prompt",
	}

	dryRunFlag = &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Validate the configuration and print the plan without running it",
	}

	analyticsFlag = &cli.BoolFlag{
		Name:    "disable-telemetry",
		EnvVars: []string{"DISABLE_TELEMETRY"},
		Hidden:  true,
	}

	upgradeCheckFlag = &cli.BoolFlag{
		Name:    "disable-upgrade-check",
		Usage:   "Disable the check for a newer fedsetup version",
		EnvVars: []string{"DISABLE_UPGRADE_CHECK"},
	}
)

// logPath points to the current session's debug log
var logPath string

// actions can be used to chain action functions (for urfave/cli's Before, After, etc)
func actions(funcs ...func(*cli.Context) error) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		for _, f := range funcs {
			if err := f(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

// initConfig takes the config flag, expands environment variables in the
// file contents and replaces the flag value with the result
func initConfig(ctx *cli.Context) error {
	f := ctx.String("config")
	if f == "" {
		return nil
	}

	file, err := configReader(f)
	if err != nil {
		return err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	subst, err := envsubst.Bytes(content)
	if err != nil {
		return err
	}

	return ctx.Set("config", string(subst))
}

// readConfig parses and validates the configuration from the config flag
// contents, which initConfig has already read in
func readConfig(ctx *cli.Context) (*v1beta1.Setup, error) {
	cfg := &v1beta1.Setup{}
	if err := yaml.UnmarshalStrict([]byte(ctx.String("config")), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration is invalid: %w", err)
	}

	return cfg, nil
}

func initAnalytics(ctx *cli.Context) error {
	if ctx.Bool("disable-telemetry") {
		log.Tracef("disabling telemetry")
		return nil
	}

	if segment.WriteKey == "" {
		log.Tracef("segment write key not set, analytics disabled")
		return nil
	}

	segment.Verbose = ctx.Bool("trace")
	client, err := segment.NewClient()
	if err != nil {
		return err
	}
	analytics.Client = client

	return nil
}

func closeAnalytics(_ *cli.Context) error {
	analytics.Client.Close()
	return nil
}

// upgradeCheck warns when a newer release of the tool is available. It never
// fails the command it runs under.
func upgradeCheck(ctx *cli.Context) error {
	if ctx.Bool("disable-upgrade-check") {
		return nil
	}

	stamp := cache.File("upgrade-check")
	if info, err := os.Stat(stamp); err == nil && time.Since(info.ModTime()) < 24*time.Hour {
		log.Tracef("last upgrade check is recent enough, skipping")
		return nil
	}

	current, err := goversion.NewVersion(version.Version)
	if err != nil {
		log.Tracef("can't parse current version %q, skipping upgrade check", version.Version)
		return nil
	}

	latest, err := github.LatestRelease("fedsetup/fedsetup", version.IsPre())
	if err != nil {
		log.Debugf("upgrade check failed: %s", err)
		return nil
	}

	if err := cache.EnsureDir(cache.Dir()); err == nil {
		if err := os.WriteFile(stamp, nil, 0644); err != nil {
			log.Tracef("failed to write upgrade check stamp: %s", err)
		}
	}

	remote, err := goversion.NewVersion(latest.TagName)
	if err != nil {
		return nil
	}

	if remote.GreaterThan(current) {
		log.Warnf("a newer version %s of fedsetup is available at %s", latest.TagName, latest.URL)
	}

	return nil
}

// initLogging initializes the logger
func initLogging(ctx *cli.Context) error {
	log.SetLevel(log.TraceLevel)
	log.SetOutput(io.Discard)
	initScreenLogger(logLevelFromCtx(ctx, log.InfoLevel))
	rig.SetLogger(log.StandardLogger())
	return initFileLogger()
}

func logLevelFromCtx(ctx *cli.Context, defaultLevel log.Level) log.Level {
	if ctx.Bool("debug") {
		return log.DebugLevel
	} else if ctx.Bool("trace") {
		return log.TraceLevel
	} else {
		return defaultLevel
	}
}

func initScreenLogger(lvl log.Level) {
	log.AddHook(screenLoggerHook(lvl))
}

func initFileLogger() error {
	lf, err := LogFile()
	if err != nil {
		return err
	}
	log.AddHook(fileLoggerHook(lf))
	return nil
}

func LogFile() (io.Writer, error) {
	logDir := cache.StateDir()
	if err := cache.EnsureDir(logDir); err != nil {
		return nil, fmt.Errorf("error while creating log directory %s: %s", logDir, err.Error())
	}

	fn := path.Join(logDir, "fedsetup.log")
	logFile, err := os.OpenFile(fn, os.O_RDWR|os.O_CREATE|os.O_APPEND|os.O_SYNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log %s: %s", fn, err.Error())
	}

	_, _ = fmt.Fprintf(logFile, "time=\"%s\" level=info msg=\"###### New session ######\"\n", time.Now().Format(time.RFC822))
	logPath = fn

	return logFile, nil
}

func configReader(f string) (io.ReadCloser, error) {
	if f == "-" {
		stat, err := os.Stdin.Stat()
		if err != nil {
			return nil, fmt.Errorf("can't stat stdin: %s", err.Error())
		}
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			return os.Stdin, nil
		}
		return nil, fmt.Errorf("can't read stdin")
	}

	variants := []string{f}
	// add .yml to default value lookup
	if f == "fedsetup.yaml" {
		variants = append(variants, "fedsetup.yml")
	}

	for _, fn := range variants {
		if _, err := os.Stat(fn); err != nil {
			continue
		}

		fp, err := filepath.Abs(fn)
		if err != nil {
			return nil, err
		}
		file, err := os.Open(fp)
		if err != nil {
			return nil, err
		}

		return file, nil
	}

	return nil, fmt.Errorf("failed to locate configuration")
}

type loghook struct {
	Writer    io.Writer
	Formatter log.Formatter

	levels []log.Level
}

func (h *loghook) SetLevel(level log.Level) {
	h.levels = []log.Level{}
	for _, l := range log.AllLevels {
		if level >= l {
			h.levels = append(h.levels, l)
		}
	}
}

func (h *loghook) Levels() []log.Level {
	return h.levels
}

func (h *loghook) Fire(entry *log.Entry) error {
	line, err := h.Formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to format log entry: %v", err)
		return err
	}
	_, err = h.Writer.Write(line)
	return err
}

func screenLoggerHook(lvl log.Level) *loghook {
	l := &loghook{Formatter: &log.TextFormatter{DisableTimestamp: lvl < log.DebugLevel, ForceColors: true}}

	if runtime.GOOS == "windows" {
		l.Writer = ansicolor.NewAnsiColorWriter(os.Stdout)
	} else {
		l.Writer = os.Stdout
	}

	l.SetLevel(lvl)

	return l
}

func fileLoggerHook(logFile io.Writer) *loghook {
	l := &loghook{
		Formatter: &log.TextFormatter{
			FullTimestamp:          true,
			TimestampFormat:        time.RFC822,
			DisableLevelTruncation: true,
		},
		Writer: logFile,
	}

	l.SetLevel(log.DebugLevel)

	return l
}
