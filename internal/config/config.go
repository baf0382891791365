package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arif891/layx-sub000/internal/afs"
	"github.com/arif891/layx-sub000/internal/project/layout"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

const (
	APP_NAME              = "layx"
	USER_CONFIG_RELPATH   = APP_NAME + "/config.yaml"
	DEFAULT_REMOTE_URL    = "https://raw.githubusercontent.com/arif891/layx/main"
	DEFAULT_IMG_QUALITY   = 80
	DEFAULT_BUNDLE_TARGET = "es2020"

	REMOTE_URL_ENV_VARNAME = "LAYX_REMOTE_URL"
	NO_IMAGES_ENV_VARNAME  = "LAYX_NO_IMAGES"
	COMPRESS_ENV_VARNAME   = "LAYX_COMPRESS"
)

var (
	ErrUnknownTarget       = errors.New("unknown bundler target")
	ErrInvalidImageQuality = errors.New("image quality should be in the range [1, 100]")

	KNOWN_BUNDLE_TARGETS = []string{"es2015", "es2016", "es2017", "es2018", "es2019", "es2020", "es2021", "es2022", "esnext"}

	DEFAULT_EXCLUDE = []string{"**/node_modules", "**/.git"}
)

// Project is the configuration of a project, it is created once by Load and never modified.
type Project struct {
	Registry *layout.Registry

	OptimizeLayout bool
	OptimizeImages bool
	Compress       bool //write .gz siblings of the bundled JS files.
	RemoteURL      string
	Exclude        []string //doublestar patterns of the paths ignored by scans.
	ImageQuality   int
	Bundler        Bundler
}

// Bundler holds the options passed to the bundler, they can be overridden by the bundler section of the
// project config file.
type Bundler struct {
	Minify      bool     `yaml:"minify"`
	Splitting   bool     `yaml:"splitting"`
	Target      string   `yaml:"target"`
	Sourcemap   bool     `yaml:"sourcemap"`
	DropConsole bool     `yaml:"drop_console"`
	External    []string `yaml:"external"`
}

// fileConfig is the content of a configuration file, absent keys are nil.
type fileConfig struct {
	OptimizeLayout *bool          `yaml:"optimize_layout"`
	OptimizeImages *bool          `yaml:"optimize_images"`
	Compress       *bool          `yaml:"compress"`
	RemoteURL      *string        `yaml:"remote_url"`
	Exclude        []string       `yaml:"exclude"`
	ImageQuality   *int           `yaml:"image_quality"`
	Bundler        *bundlerConfig `yaml:"bundler"`
}

type bundlerConfig struct {
	Minify      *bool    `yaml:"minify"`
	Splitting   *bool    `yaml:"splitting"`
	Target      *string  `yaml:"target"`
	Sourcemap   *bool    `yaml:"sourcemap"`
	DropConsole *bool    `yaml:"drop_console"`
	External    []string `yaml:"external"`
}

func Default(reg *layout.Registry) *Project {
	return &Project{
		Registry:       reg,
		OptimizeLayout: true,
		OptimizeImages: true,
		RemoteURL:      DEFAULT_REMOTE_URL,
		Exclude:        slices.Clone(DEFAULT_EXCLUDE),
		ImageQuality:   DEFAULT_IMG_QUALITY,
		Bundler: Bundler{
			Minify:    true,
			Splitting: true,
			Target:    DEFAULT_BUNDLE_TARGET,
		},
	}
}

type LoadParams struct {
	Filesystem afs.Filesystem //project filesystem
	Registry   *layout.Registry

	//defaults to os.LookupEnv.
	LookupEnv func(name string) (string, bool)

	//if empty the user config file is searched in the XDG config directories.
	UserConfigPath   string
	IgnoreUserConfig bool
}

// Load merges, in this order: the defaults, the user config file (only remote_url), the project config file,
// the .env file of the project and the process environment.
func Load(params LoadParams) (*Project, error) {
	project := Default(params.Registry)

	if !params.IgnoreUserConfig {
		if err := project.applyUserConfig(params.UserConfigPath); err != nil {
			return nil, err
		}
	}

	configPath := params.Registry.Files.ProjectConfig
	content, err := afs.ReadFile(params.Filesystem, configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	default:
		var fileConfig fileConfig
		if err := yaml.Unmarshal(content, &fileConfig); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", configPath, err)
		}
		project.apply(fileConfig)
	}

	lookupEnv, err := envLookup(params)
	if err != nil {
		return nil, err
	}
	if err := project.applyEnv(lookupEnv); err != nil {
		return nil, err
	}

	if err := project.validate(); err != nil {
		return nil, err
	}
	return project, nil
}

func (p *Project) applyUserConfig(pth string) error {
	if pth == "" {
		found, err := xdg.SearchConfigFile(USER_CONFIG_RELPATH)
		if err != nil { //not found
			return nil
		}
		pth = found
	}

	content, err := os.ReadFile(pth)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read user config %s: %w", pth, err)
	}

	var fileConfig fileConfig
	if err := yaml.Unmarshal(content, &fileConfig); err != nil {
		return fmt.Errorf("invalid user config %s: %w", pth, err)
	}

	if fileConfig.RemoteURL != nil {
		p.RemoteURL = *fileConfig.RemoteURL
	}
	return nil
}

func (p *Project) apply(c fileConfig) {
	setIfNotNil(&p.OptimizeLayout, c.OptimizeLayout)
	setIfNotNil(&p.OptimizeImages, c.OptimizeImages)
	setIfNotNil(&p.Compress, c.Compress)
	setIfNotNil(&p.RemoteURL, c.RemoteURL)
	setIfNotNil(&p.ImageQuality, c.ImageQuality)

	if c.Exclude != nil {
		p.Exclude = c.Exclude
	}

	if c.Bundler != nil {
		setIfNotNil(&p.Bundler.Minify, c.Bundler.Minify)
		setIfNotNil(&p.Bundler.Splitting, c.Bundler.Splitting)
		setIfNotNil(&p.Bundler.Target, c.Bundler.Target)
		setIfNotNil(&p.Bundler.Sourcemap, c.Bundler.Sourcemap)
		setIfNotNil(&p.Bundler.DropConsole, c.Bundler.DropConsole)
		if c.Bundler.External != nil {
			p.Bundler.External = c.Bundler.External
		}
	}
}

func (p *Project) applyEnv(lookupEnv func(string) (string, bool)) error {
	if s, ok := lookupEnv(REMOTE_URL_ENV_VARNAME); ok && s != "" {
		p.RemoteURL = s
	}

	if s, ok := lookupEnv(NO_IMAGES_ENV_VARNAME); ok && s != "" {
		noImages, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", NO_IMAGES_ENV_VARNAME, err)
		}
		if noImages {
			p.OptimizeImages = false
		}
	}

	if s, ok := lookupEnv(COMPRESS_ENV_VARNAME); ok && s != "" {
		compress, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", COMPRESS_ENV_VARNAME, err)
		}
		p.Compress = compress
	}
	return nil
}

func (p *Project) validate() error {
	p.Bundler.Target = strings.ToLower(p.Bundler.Target)
	if !slices.Contains(KNOWN_BUNDLE_TARGETS, p.Bundler.Target) {
		return fmt.Errorf("%w: %q", ErrUnknownTarget, p.Bundler.Target)
	}

	if p.ImageQuality < 1 || p.ImageQuality > 100 {
		return fmt.Errorf("%w: %d", ErrInvalidImageQuality, p.ImageQuality)
	}

	p.RemoteURL = strings.TrimSuffix(p.RemoteURL, "/")
	return nil
}

// envLookup returns a lookup function reading the process environment first, then the .env file of the project.
func envLookup(params LoadParams) (func(string) (string, bool), error) {
	lookupEnv := params.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}

	envPath := params.Registry.Files.Env
	content, err := afs.ReadFile(params.Filesystem, envPath)
	if errors.Is(err, fs.ErrNotExist) {
		return lookupEnv, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", envPath, err)
	}

	dotenv, err := godotenv.Unmarshal(string(content))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", envPath, err)
	}

	return func(name string) (string, bool) {
		if s, ok := lookupEnv(name); ok {
			return s, true
		}
		s, ok := dotenv[name]
		return s, ok
	}, nil
}

func setIfNotNil[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
