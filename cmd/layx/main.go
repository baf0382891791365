package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"time"
	"unicode"

	"github.com/Masterminds/semver/v3"
	"github.com/arif891/layx-sub000/internal/afs"
	"github.com/arif891/layx-sub000/internal/build"
	"github.com/arif891/layx-sub000/internal/bundle"
	"github.com/arif891/layx-sub000/internal/config"
	"github.com/arif891/layx-sub000/internal/imageopt"
	"github.com/arif891/layx-sub000/internal/project/layout"
	"github.com/arif891/layx-sub000/internal/remote"
	"github.com/arif891/layx-sub000/internal/utils"
	"github.com/arif891/layx-sub000/internal/watch"
	"github.com/muesli/termenv"
	"github.com/posener/complete/v2/install"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const (
	ERROR_STATUS_CODE = 1

	COMMAND_NAME = "layx"
	VERSION      = "1.4.0"
)

func main() {
	//handle completions
	completer.Complete(COMMAND_NAME)

	statusCode := _main(os.Args, os.Stdout, os.Stderr)
	if statusCode != 0 {
		os.Exit(statusCode)
	}
}

func _main(args []string, outW io.Writer, errW io.Writer) (statusCode int) {
	if len(args) == 1 { //no subcommand specified
		fmt.Fprint(errW, LAYX_CMD_HELP)
		return ERROR_STATUS_CODE
	}

	mainSubCommand := args[1]
	mainSubCommandArgs := args[2:]

	//if the command has the shape help <subcommand> ... we modify the arguments to ask the subcommand to print its help message.
	if mainSubCommand == HELP_SUBCMD && len(mainSubCommandArgs) > 0 && mainSubCommandArgs[0] != "" && unicode.IsLetter(rune(mainSubCommandArgs[0][0])) {
		mainSubCommand = mainSubCommandArgs[0]
		mainSubCommandArgs = []string{"-h"}
	}

	if slices.Contains(HELP_SUBCMD_EQUIVALENTS, mainSubCommand) {
		mainSubCommand = HELP_SUBCMD
	}

	//unknown command
	if !slices.Contains(SUBCOMMANDS, mainSubCommand) {
		fmt.Fprintf(errW, "unknown command '%s'", mainSubCommand)

		closest, _, ok := utils.FindClosestString(context.Background(), SUBCOMMANDS, mainSubCommand, 2)
		if ok {
			fmt.Fprintf(errW, ", did you mean '%s' ?\n", closest)
		} else {
			fmt.Fprint(errW, "\n"+LAYX_CMD_HELP)
		}
		return ERROR_STATUS_CODE
	}

	switch mainSubCommand {
	case HELP_SUBCMD:
		fmt.Fprint(outW, LAYX_CMD_HELP)
		return
	case VERSION_SUBCMD:
		fmt.Fprintln(outW, VERSION)
		return
	case INSTALL_COMPLETIONS_SUBCMD:
		err := install.Install(COMMAND_NAME)
		if err != nil {
			fmt.Fprintln(errW, err)
			return ERROR_STATUS_CODE
		}
		fmt.Fprintln(outW, "installed")
		return
	case UNINSTALL_COMPLETIONS_SUBCMD:
		err := install.Uninstall(COMMAND_NAME)
		if err != nil {
			fmt.Fprintln(errW, err)
			return ERROR_STATUS_CODE
		}
		fmt.Fprintln(outW, "uninstalled")
		return
	case ADD_SUBCMD:
		return addItems(mainSubCommandArgs, outW, errW)
	}

	//build, unbuild, optimizeImages and watch

	flags := flag.NewFlagSet(mainSubCommand, flag.ContinueOnError)
	flags.SetOutput(errW)

	var root string
	var verbose bool
	var noImages bool

	flags.StringVar(&root, "root", ".", "root directory of the project")
	flags.BoolVar(&verbose, "v", false, "show debug logs")
	if mainSubCommand == BUILD_SUBCMD || mainSubCommand == WATCH_SUBCMD {
		flags.BoolVar(&noImages, "no-images", false, "do not optimize images")
	}

	if showHelp(flags, mainSubCommandArgs, outW) {
		return
	}

	if err := flags.Parse(mainSubCommandArgs); err != nil {
		return ERROR_STATUS_CODE
	}

	env, err := newEnvironment(root, verbose, errW)
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}
	if noImages {
		env.project.OptimizeImages = false
	}

	ctx, cancel := cancelOnSigintSigterm(context.Background())
	defer cancel()

	pipeline := env.newPipeline()
	banner := newBannerPrinter(outW)

	switch mainSubCommand {
	case BUILD_SUBCMD:
		start := time.Now()
		result, err := pipeline.Build(ctx)
		if err != nil {
			env.logger.Error().Err(err).Msg("build failed")
			return ERROR_STATUS_CODE
		}
		banner.success(fmt.Sprintf("%s completed in %s", result.Transition, time.Since(start).Round(time.Millisecond)))
	case UNBUILD_SUBCMD:
		result, err := pipeline.Unbuild(ctx)
		if err != nil {
			env.logger.Error().Err(err).Msg("unbuild failed")
			return ERROR_STATUS_CODE
		}
		if len(result.Steps) > 0 {
			banner.success("unbuild completed")
		}
	case OPTIMIZE_IMAGES_SUBCMD:
		report, err := pipeline.OptimizeImages(ctx)
		if err != nil {
			env.logger.Error().Err(err).Msg("image optimization failed")
			return ERROR_STATUS_CODE
		}
		banner.success(report.String())
	case WATCH_SUBCMD:
		if _, err := pipeline.Build(ctx); err != nil {
			env.logger.Error().Err(err).Msg("build failed")
			return ERROR_STATUS_CODE
		}

		watcher := watch.NewWatcher(watch.WatcherParams{
			Filesystem: env.fls,
			Registry:   env.project.Registry,
			Exclude:    env.project.Exclude,
			Logger:     env.logger,
			Rebuild: func(ctx context.Context) error {
				_, err := pipeline.Build(ctx)
				return err
			},
		})

		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			env.logger.Error().Err(err).Msg("watch failed")
			return ERROR_STATUS_CODE
		}
	}

	return 0
}

// environment holds what every project command needs.
type environment struct {
	fls     afs.Filesystem
	project *config.Project
	logger  zerolog.Logger
}

func newEnvironment(root string, verbose bool, errW io.Writer) (*environment, error) {
	fls, err := afs.OS(root)
	if err != nil {
		return nil, err
	}

	project, err := config.Load(config.LoadParams{
		Filesystem: fls,
		Registry:   layout.Default(),
	})
	if err != nil {
		return nil, err
	}

	return &environment{
		fls:     fls,
		project: project,
		logger:  newLogger(errW, verbose),
	}, nil
}

func (env *environment) newPipeline() *build.Pipeline {
	return build.NewPipeline(build.PipelineParams{
		Filesystem: env.fls,
		Project:    env.project,
		Bundler:    bundle.NewEsbuild(env.fls, env.project.Bundler, env.project.Compress, env.logger),
		ImageOptimizer: imageopt.NewOptimizer(env.fls, env.project.Registry, imageopt.CwebpEncoder{
			Quality: env.project.ImageQuality,
		}, env.logger),
		Logger: env.logger,
	})
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	noColor := !config.SHOULD_COLORIZE
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		noColor = !config.FORCE_COLOR
	}
	if config.NO_COLOR {
		noColor = true
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: time.TimeOnly,
	}).Level(level).With().Timestamp().Logger()
}

type bannerPrinter struct {
	w      io.Writer
	output *termenv.Output
}

func newBannerPrinter(w io.Writer) bannerPrinter {
	return bannerPrinter{
		w:      w,
		output: termenv.NewOutput(w, termenv.WithProfile(config.COLOR_PROFILE)),
	}
}

func (p bannerPrinter) success(msg string) {
	styled := p.output.String(msg).Foreground(p.output.Color("2")).Bold()
	fmt.Fprintln(p.w, styled.String())
}

func cliVersion() *semver.Version {
	return semver.MustParse(VERSION)
}

func newRemoteClient(env *environment) *remote.Client {
	return remote.NewClient(remote.ClientParams{
		BaseURL:    env.project.RemoteURL,
		Filesystem: env.fls,
		Registry:   env.project.Registry,
		Version:    cliVersion(),
		Logger:     env.logger,
	})
}
