// cmd/panelctl/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"panel-link/internal/config"
	"panel-link/internal/discovery"
	"panel-link/internal/protocol"
	"panel-link/internal/repository"
	"panel-link/internal/service"
	"panel-link/internal/utils"
)

// Exit codes
const (
	exitOK          = 0
	exitError       = 1
	exitNoCandidate = 2
)

type options struct {
	list       bool
	format     string
	port       string
	send       string
	video      int
	id         string
	decode     string
	configPath string
	verbose    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options

	fs := pflag.NewFlagSet("panelctl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.list, "list", false, "list detected serial ports with scores")
	fs.StringVarP(&opts.format, "format", "f", formatText, "output format: text, json or yaml")
	fs.StringVarP(&opts.port, "port", "p", "", "device path, bypasses detection")
	fs.StringVar(&opts.send, "send", "", "send a raw JSON line")
	fs.IntVar(&opts.video, "video", 0, "send VIDEO_SELECT for channel 1..3")
	fs.StringVar(&opts.id, "id", "", "command id for --video (generated when empty)")
	fs.StringVar(&opts.decode, "decode", "", "decode one device line and print it")
	fs.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	fs.Duration("window", protocol.DefaultProbeWindow, "probe window per candidate")
	fs.String("by-id-dir", "", "directory of stable serial device names")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging on stderr")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitError
	}

	out, err := newPrinter(opts.format, stdout)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	if fs.Changed("decode") {
		return decodeLine(out, stderr, opts.decode)
	}

	v := viper.New()
	if err := bindConfigFlags(v, fs); err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	cfg, err := config.LoadWith(v, opts.configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	logger, err := utils.NewLogger(cliLogging(cfg.Logging, opts.verbose))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	defer func() { _ = utils.CloseLogger(logger) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	history := repository.NewMemoryCommandRepository(cfg.History.Capacity)
	devices := service.BuildDeviceService(&cfg.Device, history, logger)

	return execute(ctx, devices, opts, out, stderr)
}

// configFlags maps config keys to the flags that override them
var configFlags = map[string]string{
	"device.probe_window": "window",
	"device.by_id_dir":    "by-id-dir",
}

// bindConfigFlags lets explicitly set flags override file and env config
func bindConfigFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, name := range configFlags {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

// cliLogging keeps stdout for results: console format on stderr, warn
// level unless verbose. A log file from the config is still honoured.
func cliLogging(cfg config.LoggingConfig, verbose bool) *config.LoggingConfig {
	cfg.Format = "console"
	if cfg.Output == "" || cfg.Output == "stdout" {
		cfg.Output = "stderr"
	}
	cfg.Level = "warn"
	if verbose {
		cfg.Level = "debug"
	}
	return &cfg
}

func execute(ctx context.Context, devices *service.DeviceService, opts options, out *printer, stderr io.Writer) int {
	if opts.list {
		candidates, err := devices.ListDevices(ctx)
		if err != nil {
			return fail(stderr, err)
		}
		if err := out.devices(candidates); err != nil {
			return fail(stderr, err)
		}
		return exitOK
	}

	port := opts.port
	if port == "" {
		sel, err := devices.SelectDevice(ctx)
		if err != nil {
			return fail(stderr, err)
		}
		if !sel.Found {
			return fail(stderr, discovery.ErrNoCandidates)
		}
		port = sel.Device.RealPath
	}

	switch {
	case opts.video != 0:
		record, err := devices.SelectVideo(ctx, port, opts.id, opts.video)
		if err != nil {
			return fail(stderr, err)
		}
		return finish(stderr, out.record(record))

	case opts.send != "":
		record, err := devices.SendRaw(ctx, port, opts.send)
		if err != nil {
			return fail(stderr, err)
		}
		return finish(stderr, out.record(record))
	}

	return finish(stderr, out.port(port))
}

func decodeLine(out *printer, stderr io.Writer, line string) int {
	msg, err := protocol.DecodeLine([]byte(line))
	if err != nil {
		return fail(stderr, err)
	}
	return finish(stderr, out.message(msg))
}

func finish(stderr io.Writer, err error) int {
	if err != nil {
		return fail(stderr, err)
	}
	return exitOK
}

func fail(stderr io.Writer, err error) int {
	if errors.Is(err, discovery.ErrNoCandidates) {
		fmt.Fprintln(stderr, "No serial ports detected")
		return exitNoCandidate
	}
	fmt.Fprintf(stderr, "panelctl: %v\n", err)
	return exitError
}
