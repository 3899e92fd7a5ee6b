package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/frankie567/openapi-tools/internal/config"
	"github.com/frankie567/openapi-tools/internal/diff"
	"github.com/frankie567/openapi-tools/internal/logging"
	"github.com/frankie567/openapi-tools/internal/model"
	"github.com/frankie567/openapi-tools/internal/nav"
	"github.com/frankie567/openapi-tools/internal/openapi"
	"github.com/frankie567/openapi-tools/internal/reload"
	"github.com/frankie567/openapi-tools/internal/ui"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	command := "view"
	if len(args) > 0 {
		switch args[0] {
		case "view", "list", "diff", "version", "-v", "--version", "help", "-h", "--help":
			command, args = args[0], args[1:]
		}
	}

	var err error
	switch command {
	case "version", "-v", "--version":
		fmt.Fprintf(stdout, "openapi-tools %s\n", version)
		return 0
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	case "list":
		err = handleList(args, stdout, stderr)
	case "diff":
		err = handleDiff(args, stdout, stderr)
	default:
		err = handleView(args, stderr)
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: openapi-tools <command> [flags] [args]

Commands:
  view [flags] SOURCE          browse a document in the terminal (default)
  list [flags] SOURCE          print endpoints by tag and schemas by name
  diff [flags] BASE HEAD       compare two documents
  version                      print the version

SOURCE is a file path, @path, or an http(s) URL. It may also come from
--spec, --spec-file, --spec-url or the OPENAPI_TOOLS_SPEC* variables.

Run 'openapi-tools <command> -h' for the flags of a command.
`)
}

// setup holds a command's flag set and the config and logger resolved
// from it.
type setup struct {
	fs  *flag.FlagSet
	cfg config.Config
	log *slog.Logger
	// closeLog releases the log file.
	closeLog func() error
}

func newSetup(name, usage string, stderr io.Writer, extra func(*flag.FlagSet)) (*setup, *config.Flags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := config.RegisterFlags(fs)
	if extra != nil {
		extra(fs)
	}
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: openapi-tools %s\n\nFlags:\n", usage)
		fs.PrintDefaults()
	}
	return &setup{fs: fs}, flags
}

func (s *setup) resolve(flags *config.Flags, source string) error {
	cfg, err := config.Resolve(flags, source, os.Getenv)
	if err != nil {
		return err
	}
	log, closer, err := logging.New(cfg.Debug, cfg.LogFile)
	if err != nil {
		return err
	}
	s.cfg, s.log, s.closeLog = cfg, log, closer.Close
	s.log.Debug("config", "command", s.fs.Name(), "spec", cfg.Spec, "timeout", cfg.Timeout,
		"max_cycle_depth", cfg.MaxCycleDepth, "reset", cfg.Reset)
	return nil
}

// sourceArg parses the flags and returns the optional positional source.
func (s *setup) sourceArg(flags *config.Flags, args []string) error {
	if err := s.fs.Parse(args); err != nil {
		return err
	}
	if s.fs.NArg() > 1 {
		s.fs.Usage()
		return fmt.Errorf("%s takes at most one document", s.fs.Name())
	}
	if err := s.resolve(flags, s.fs.Arg(0)); err != nil {
		return err
	}
	if s.cfg.Spec == "" {
		s.closeLog()
		return errors.New("no OpenAPI document given")
	}
	return nil
}

func (s *setup) loader() *openapi.Loader {
	return openapi.NewLoader(s.cfg.Timeout, s.cfg.MaxCycleDepth, s.log)
}

func load(ctx context.Context, loader *openapi.Loader, location string) (*model.Graph, openapi.Source, error) {
	src, err := openapi.ParseSource(location)
	if err != nil {
		return nil, openapi.Source{}, err
	}
	g, err := loader.Load(ctx, src)
	if err != nil {
		return nil, src, err
	}
	g.Generation = 1
	return g, src, nil
}

func handleView(args []string, stderr io.Writer) error {
	s, flags := newSetup("view", "view [flags] SOURCE", stderr, nil)
	if err := s.sourceArg(flags, args); err != nil {
		return err
	}
	defer s.closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loader := s.loader()
	g, src, err := load(ctx, loader, s.cfg.Spec)
	if err != nil {
		return err
	}
	engine := nav.New(g, nav.WithResetPolicy(s.cfg.Reset), nav.WithLogger(s.log))

	var app *ui.App
	coordinator := reload.New(engine, loader, src,
		reload.WithLogger(s.log),
		reload.WithNotify(func(r reload.Result) { app.OnReload(r) }),
	)
	app = ui.NewApp(engine, coordinator, src.Label(), s.log)
	return app.Run()
}

func handleList(args []string, stdout, stderr io.Writer) error {
	s, flags := newSetup("list", "list [flags] SOURCE", stderr, nil)
	if err := s.sourceArg(flags, args); err != nil {
		return err
	}
	defer s.closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, _, err := load(ctx, s.loader(), s.cfg.Spec)
	if err != nil {
		return err
	}
	return ui.WriteListing(stdout, nav.New(g, nav.WithLogger(s.log)))
}

func handleDiff(args []string, stdout, stderr io.Writer) error {
	var format string
	s, flags := newSetup("diff", "diff [flags] BASE HEAD", stderr, func(fs *flag.FlagSet) {
		fs.StringVar(&format, "format", "markdown", `output format ("markdown" or "json")`)
	})
	if err := s.fs.Parse(args); err != nil {
		return err
	}
	if s.fs.NArg() != 2 {
		s.fs.Usage()
		return errors.New("diff needs a base and a head document")
	}
	if format != "markdown" && format != "json" {
		return fmt.Errorf("unknown format %q", format)
	}
	if err := s.resolve(flags, ""); err != nil {
		return err
	}
	defer s.closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loader := s.loader()
	base, _, err := load(ctx, loader, s.fs.Arg(0))
	if err != nil {
		return fmt.Errorf("base: %w", err)
	}
	head, _, err := load(ctx, loader, s.fs.Arg(1))
	if err != nil {
		return fmt.Errorf("head: %w", err)
	}

	result := diff.Compare(base, head)
	if format == "json" {
		out, err := diff.JSON(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, out)
		return nil
	}
	fmt.Fprint(stdout, diff.Markdown(result))
	return nil
}
