package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/conf/v3/yaml"
	"github.com/ardanlabs/gossipchain/business/sys/validate"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/network"
)

// prefix is used for every environment variable the node reads.
const prefix = "NODE"

// defaultSettingsFile is read when NODE_SETTINGS_FILE is not set. A missing
// file is not an error.
const defaultSettingsFile = "zblock/settings.yaml"

// Settings are the named values the node core is built with.
type Settings struct {
	MinTxPerBlock    int           `conf:"default:3" yaml:"min_tx_per_block" validate:"gte=0"`
	Difficulty       int           `conf:"default:4" yaml:"difficulty" validate:"gte=0,lte=64"`
	ConcurrentHashes uint64        `conf:"default:1000" yaml:"concurrent_hashes" validate:"gte=1"`
	DebugBroadcast   bool          `conf:"default:false" yaml:"debug_broadcast"`
	DebugPerf        bool          `conf:"default:false" yaml:"debug_perf"`
	BroadcastRandom  bool          `conf:"default:false" yaml:"broadcast_random"`
	DialTimeout      time.Duration `conf:"default:0s" yaml:"dial_timeout"`
}

// Database returns the settings for the chain.
func (s Settings) Database() database.Config {
	return database.Config{
		MinTxPerBlock:    s.MinTxPerBlock,
		Difficulty:       s.Difficulty,
		ConcurrentHashes: s.ConcurrentHashes,
		DebugPerf:        s.DebugPerf,
	}
}

// Transport returns the settings for talking to peers.
func (s Settings) Transport() network.Config {
	return network.Config{
		DialTimeout:    s.DialTimeout,
		DebugBroadcast: s.DebugBroadcast,
	}
}

// Config is all the configuration for the application and the default values.
type Config struct {
	conf.Version
	Peers string `conf:"help:comma separated list of peers, a bare port is a port on 127.0.0.1"`
	Web   struct {
		ReadTimeout     time.Duration `conf:"default:5s"`
		WriteTimeout    time.Duration `conf:"default:10s"`
		IdleTimeout     time.Duration `conf:"default:120s"`
		ShutdownTimeout time.Duration `conf:"default:20s"`
		DebugHost       string        `conf:"default:0.0.0.0:7080"`
		PublicHost      string        `conf:"default:0.0.0.0:8080"`
	}
	Settings Settings
}

// errHelp is returned when the configuration help was shown.
var errHelp = errors.New("help shown")

// parseConfig sets the defaults, applies the settings file and then looks for
// any overriding values in environment variables and command line flags.
func parseConfig(build string) (Config, error) {
	cfg := Config{
		Version: conf.Version{
			Build: build,
			Desc:  "gossipchain proof of work node",
		},
	}

	var parsers []conf.Parsers
	data, err := readSettingsFile()
	if err != nil {
		return Config{}, err
	}
	if data != nil {
		parsers = append(parsers, yaml.WithData(data))
	}

	help, err := conf.Parse(prefix, &cfg, parsers...)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return Config{}, errHelp
		}
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := validate.Check(cfg.Settings); err != nil {
		return Config{}, fmt.Errorf("validating settings: %w", err)
	}

	return cfg, nil
}

// readSettingsFile returns the content of the settings file, nil when the
// file does not exist.
func readSettingsFile() ([]byte, error) {
	path := os.Getenv(prefix + "_SETTINGS_FILE")
	if path == "" {
		path = defaultSettingsFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	default:
		return nil, fmt.Errorf("reading settings file %s: %w", path, err)
	}
}
