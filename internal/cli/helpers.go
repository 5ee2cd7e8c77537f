package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dmelton/plangate/internal/archive"
	"github.com/dmelton/plangate/internal/config"
	"github.com/dmelton/plangate/internal/logs"
	"github.com/dmelton/plangate/internal/session"
	"github.com/dmelton/plangate/internal/store"
	"github.com/dmelton/plangate/internal/types"
	"github.com/dmelton/plangate/internal/validate"
)

// runtime bundles the wired components every command needs.
type runtime struct {
	dataDir    string
	projectDir string
	cfg        *config.Config
	store      *store.FileStore
	resolver   *session.Resolver
	archive    *archive.Archive
	log        *logs.Logger
}

func newRuntime(logName string) (*runtime, error) {
	dir := dataDir
	if dir == "" {
		dir = config.DataDir()
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	log := logs.New(filepath.Join(dir, "logs"), logName)

	st, err := store.NewFileStore(filepath.Join(dir, "sessions"))
	if err != nil {
		return nil, err
	}

	return &runtime{
		dataDir:    dir,
		projectDir: filepath.Dir(dir),
		cfg:        cfg,
		store:      st,
		resolver:   session.NewResolver(st),
		archive:    archive.New(filepath.Join(dir, "archive"), cfg.ArchiveKeep, cfg.HistoryKeep, log),
		log:        log,
	}, nil
}

func (rt *runtime) validator() *validate.Runner {
	return validate.NewRunner(rt.projectDir, rt.log)
}

func (rt *runtime) staleAge() time.Duration {
	return time.Duration(rt.cfg.StaleSessionDays) * 24 * time.Hour
}

// runHook is the shared shell for every hook command: parse stdin, run the
// handler, and emit exactly one JSON response. Every failure — malformed
// input, setup errors, panics — resolves to an allowing response, because
// the hook system must never be the reason a session cannot end.
func runHook(logName string, fn func(rt *runtime, ev *types.HookEvent) types.HookResponse) {
	resp := types.Allow("")
	defer func() {
		if r := recover(); r != nil {
			resp = types.Allow("")
		}
		_ = resp.Write(os.Stdout)
	}()

	rt, err := newRuntime(logName)
	if err != nil {
		return
	}

	ev, err := types.DecodeHookEvent(os.Stdin)
	if err != nil {
		rt.log.Printf("cannot decode hook event: %v", err)
		return
	}

	resp = fn(rt, ev)
}
