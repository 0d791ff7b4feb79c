package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akyairhashvil/studyplan/internal/config"
	"github.com/akyairhashvil/studyplan/internal/database"
	"github.com/akyairhashvil/studyplan/internal/report"
	"github.com/akyairhashvil/studyplan/internal/service"
	"github.com/akyairhashvil/studyplan/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// app holds the state shared by every command of one invocation.
type app struct {
	configFile string
	dbPath     string

	v        *viper.Viper
	settings *config.Settings
	log      *zap.Logger
	db       *database.Database
	svc      *service.Service

	now            func() time.Time
	newID          func() string
	readPassphrase func(prompt string) (string, error)
}

func newApp() *app {
	return &app{
		now:            time.Now,
		readPassphrase: promptForKey,
	}
}

// loadSettings reads the config file, environment and flags once.
func (a *app) loadSettings(cmd *cobra.Command) error {
	if a.settings != nil {
		return nil
	}
	a.v = config.NewViper(a.configFile)
	if f := cmd.Flags().Lookup("db"); f != nil {
		if err := a.v.BindPFlag("storage.path", f); err != nil {
			return err
		}
	}
	s, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.settings = s

	a.log = zap.NewNop()
	if s.Logging.File != "" {
		if err := util.EnsureDir(filepath.Dir(s.Logging.File)); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		l, err := util.NewLogger(s.Logging.Level, s.Logging.File)
		if err != nil {
			return err
		}
		a.log = l
	}
	util.SetLogger(a.log)
	return nil
}

func (a *app) storePath() string {
	if a.settings.Storage.Path != "" {
		return a.settings.Storage.Path
	}
	return filepath.Join(util.DataDir(config.AppName), config.DBFileName)
}

// open starts the store and the scheduling service.
func (a *app) open(cmd *cobra.Command) (*service.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	if err := a.loadSettings(cmd); err != nil {
		return nil, err
	}
	db, err := database.Open(commandContext(cmd), a.storePath())
	if err != nil {
		return nil, err
	}
	opts := []service.Option{service.WithLogger(a.log), service.WithClock(a.now)}
	if a.newID != nil {
		opts = append(opts, service.WithIDGenerator(a.newID))
	}
	svc, err := service.New(db, a.settings, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	a.db, a.svc = db, svc
	if v, err := db.Version(commandContext(cmd)); err == nil {
		a.log.Debug("store opened", zap.String("path", db.Path()), zap.Int("schema", v))
	}
	return svc, nil
}

func (a *app) close() {
	if a.svc != nil {
		a.svc.Close()
		a.svc = nil
	}
	if a.db != nil {
		util.LogError("close database", a.db.Close())
		a.db = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *app) location() *time.Location {
	return a.settings.Location()
}

func (a *app) writeReport(dir string) func(report.Week) (string, error) {
	return func(w report.Week) (string, error) {
		if dir == "" {
			dir = util.ReportsDir(config.AppName, config.ReportsSubdir)
		}
		return report.WriteFile(dir, w)
	}
}

func (a *app) parseWhen(s string) (time.Time, error) {
	return util.ParseWhen(s, a.location())
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// promptForKey reads a passphrase without echo when stdin is a terminal.
func promptForKey(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return readLine(os.Stdin)
	}
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	return strings.TrimSpace(string(pass)), err
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
