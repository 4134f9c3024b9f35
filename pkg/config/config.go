package config

import (
	"os"
	"path/filepath"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// FileName is the optional config file looked up in the working directory and the project root
const FileName = "automate.toml"

// Config describes all configuration options
type Config struct {
	Root string `usage:"Repository root; detected from the enclosing git checkout if empty" toml:"root"`
	Log  struct {
		Level string `default:"info" usage:"Log level (debug, info, warn, error)" toml:"level"`
	} `toml:"log"`
	Cargokit struct {
		Prefix string `default:"flutter_package/cargokit" usage:"Subtree prefix of the vendored cargokit copy" toml:"prefix"`
		Remote string `default:"https://github.com/irondash/cargokit.git" usage:"Upstream cargokit repository" toml:"remote"`
		Branch string `default:"main" usage:"Upstream branch to pull" toml:"branch"`
	} `toml:"cargokit"`
	Ignore struct {
		File            string `default:".gitignore" usage:"Ignore list that scaffolded apps are added to" toml:"file"`
		AllowDuplicates bool   `default:"false" usage:"Append ignore entries even if they are already present" toml:"allow_duplicates"`
	} `toml:"ignore"`
	Git struct {
		CheckClean bool `default:"true" usage:"Refuse to pull subtrees into a checkout with uncommitted changes" toml:"check_clean"`
	} `toml:"git"`
}

var logLevels = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

// Loader initializes an empty config object and returns a new Loader for this object.
// Only the files in searchDirs which actually exist are read.
func Loader(searchDirs ...string) (*Config, *aconfig.Loader) {
	files := []string{}
	for _, dir := range searchDirs {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}
	}

	cfg := Config{}
	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "AUTOMATE",
		SkipFlags: true,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
}

// Load reads defaults, config files and environment variables into a new Config
func Load(searchDirs ...string) (*Config, error) {
	cfg, loader := Loader(searchDirs...)
	if err := loader.Load(); err != nil {
		return nil, eris.Wrap(err, "Failed to load config")
	}

	return cfg, nil
}

// Validate verifies that all config fields have valid values
func (cfg *Config) Validate() error {
	_, ok := logLevels[cfg.Log.Level]
	if !ok {
		return eris.Errorf(`Invalid value for log.level: %s`, cfg.Log.Level)
	}

	if cfg.Cargokit.Prefix == "" || cfg.Cargokit.Remote == "" || cfg.Cargokit.Branch == "" {
		return eris.New(`cargokit.prefix, cargokit.remote and cargokit.branch must not be empty`)
	}

	if cfg.Ignore.File == "" {
		return eris.New(`ignore.file must not be empty`)
	}

	return nil
}

// LogLevel converts the .Log.Level field to a zerolog.Level
func (cfg *Config) LogLevel() zerolog.Level {
	return logLevels[cfg.Log.Level]
}
