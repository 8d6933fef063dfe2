package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"resume-builder/internal/client"
)

const app = "resumectl"

// cli carries the state shared by every subcommand.
type cli struct {
	v   *viper.Viper
	out io.Writer
	log *zap.Logger

	// newClient is swapped in tests.
	newClient func() *client.Client
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{v: viper.New(), out: out, log: zap.NewNop()}
	c.newClient = c.defaultClient

	var cfgFile string
	root := &cobra.Command{
		Use:          app,
		Short:        app + " talks to the resume builder API and autosaves local resume files",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.loadConfig(cfgFile); err != nil {
				return err
			}
			c.log = newLogger(cmd.ErrOrStderr(), c.v.GetBool("json"), c.v.GetBool("debug"))
			return nil
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is resumectl.yaml in the current directory, if present)")
	flags.String("server", "http://localhost:3001", "API base URL")
	flags.String("token", "", "bearer token sent with every request")
	flags.StringP("user", "u", "", "owner user id")
	flags.Duration("timeout", 15*time.Second, "per-attempt request timeout")
	flags.BoolP("debug", "d", false, "verbose/debug output")
	flags.BoolP("json", "j", false, "json format for logging")
	for _, name := range []string{"server", "token", "user", "timeout", "debug", "json"} {
		_ = c.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		c.listCmd(),
		c.getCmd(),
		c.deleteCmd(),
		c.duplicateCmd(),
		c.rewriteCmd(),
		c.analyzeCmd(),
		c.coverLetterCmd(),
		c.watchCmd(),
	)
	return root
}

func (c *cli) loadConfig(cfgFile string) error {
	c.v.SetEnvPrefix("RESUMECTL")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	if cfgFile != "" {
		c.v.SetConfigFile(cfgFile)
		if err := c.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
		return nil
	}
	c.v.AddConfigPath(".")
	c.v.SetConfigName(app)
	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func (c *cli) defaultClient() *client.Client {
	return client.New(
		c.v.GetString("server"),
		client.WithToken(c.v.GetString("token")),
		client.WithAttemptTimeout(c.v.GetDuration("timeout")),
		client.WithLogger(c.log),
	)
}

func (c *cli) user() (string, error) {
	id := strings.TrimSpace(c.v.GetString("user"))
	if id == "" {
		return "", fmt.Errorf("a user id is required (--user or RESUMECTL_USER)")
	}
	return id, nil
}

func newLogger(w io.Writer, json, debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	encCfg := zapcore.EncoderConfig{
		MessageKey:  "step",
		LevelKey:    "level",
		EncodeLevel: zapcore.LowercaseLevelEncoder,
		TimeKey:     "time",
		EncodeTime:  zapcore.RFC3339TimeEncoder,
	}
	var enc zapcore.Encoder
	if json {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), level))
}
