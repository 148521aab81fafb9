package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const defaultSessionLength = 60 * time.Second

type Config struct {
	bind           string
	dataDir        string
	fps            int
	leaderboardDir string
	port           int
	prefix         string
	profile        bool
	seed           uint64
	sessionLength  time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.dataDir == "" {
		return errors.New("--data must not be empty")
	}
	if c.sessionLength <= 0 {
		return fmt.Errorf("invalid session length (must be positive): %s", c.sessionLength)
	}
	if c.fps < 1 || c.fps > 240 {
		return fmt.Errorf("invalid fps (must be between 1-240 inclusive): %d", c.fps)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) frameInterval() time.Duration {
	return time.Second / time.Duration(c.fps)
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("FAKEREAL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "fakereal",
		Short:         "A timed quiz: pick the real image out of each real/fake pair.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: FAKEREAL_BIND)")
	fs.StringVarP(&cfg.dataDir, "data", "d", "data", "content root holding real/<category> and fake/<category> (env: FAKEREAL_DATA)")
	fs.IntVar(&cfg.fps, "fps", 60, "game loop frame rate (env: FAKEREAL_FPS)")
	fs.StringVar(&cfg.leaderboardDir, "leaderboard-dir", ".", "directory for per-mode leaderboard files (env: FAKEREAL_LEADERBOARD_DIR)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: FAKEREAL_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: FAKEREAL_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: FAKEREAL_PROFILE)")
	fs.Uint64Var(&cfg.seed, "seed", 0, "seed for round selection, 0 picks one from the clock (env: FAKEREAL_SEED)")
	fs.DurationVar(&cfg.sessionLength, "session-length", defaultSessionLength, "length of one timed session (env: FAKEREAL_SESSION_LENGTH)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: FAKEREAL_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: FAKEREAL_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: FAKEREAL_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: FAKEREAL_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("fakereal v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
