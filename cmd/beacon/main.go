package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/avelara/beacon/internal/audit"
	"github.com/avelara/beacon/internal/cli"
	"github.com/avelara/beacon/internal/collection"
	"github.com/avelara/beacon/internal/config"
	"github.com/avelara/beacon/internal/db"
	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/engine"
	"github.com/avelara/beacon/internal/persist"
	"github.com/avelara/beacon/internal/realtime"
	"github.com/avelara/beacon/internal/repository"
	"github.com/avelara/beacon/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// outbound fans a mutated record out to persistence and connected clients.
type outbound struct {
	syncer *persist.Syncer
	bus    *realtime.Bus
}

func (o outbound) QueueSync(in *domain.Initiative)       { o.syncer.QueueSync(in) }
func (o outbound) BroadcastUpdate(in *domain.Initiative) { o.bus.BroadcastUpdate(in) }

func run() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// DB path: env var or default ~/.beacon/beacon.db
	dbPath := os.Getenv("BEACON_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".beacon", "beacon.db")
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	// Workflow definitions: env var or default ~/.beacon/workflows.yaml
	workflowPath := os.Getenv("BEACON_WORKFLOWS")
	if workflowPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			workflowPath = filepath.Join(home, ".beacon", "workflows.yaml")
		}
	}

	cfg, err := config.Load(workflowPath)
	if err != nil {
		return err
	}
	workflows, err := cfg.BuildWorkflows()
	if err != nil {
		return err
	}

	// An unavailable cache file degrades to an in-memory database rather
	// than refusing to start. Edits made in that mode do not survive exit.
	database, err := db.OpenDB(dbPath)
	if err != nil {
		logger.Warn("local cache unavailable, changes will not persist", "path", dbPath, "error", err)
		if database, err = db.OpenDB(":memory:"); err != nil {
			return fmt.Errorf("opening fallback database: %w", err)
		}
	}
	defer database.Close()

	initiativeRepo := repository.NewSQLiteInitiativeRepo(database)
	changeRepo := repository.NewSQLiteChangeLogRepo(database)
	noteRepo := repository.NewSQLiteNotificationRepo(database)
	userRepo := repository.NewSQLiteUserRepo(database)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncer := persist.NewSyncer(initiativeRepo, changeRepo, logger)

	store := collection.NewStore()
	items, err := syncer.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading initiatives: %w", err)
	}
	store.Load(items)

	bus := realtime.NewBus()
	notifier := service.NewNotificationService(noteRepo, bus)
	recorder := audit.NewRecorder(notifier, service.LogChannel{Logger: logger}, syncer, logger)

	onFailure := func(id string, field domain.Field, cause error) {
		fmt.Fprintf(os.Stderr, "Edit to %s on %s failed and was rolled back: %v\n", field, id, cause)
	}
	coordinator := collection.NewCoordinator(store, syncer, onFailure, logger)

	classifier := func(ownerID string) string {
		u, err := userRepo.GetByID(ctx, ownerID)
		if err != nil {
			return domain.ClassificationNone
		}
		return cfg.ClassificationFor(u.Team)
	}
	dispatcher := engine.NewDispatcher(workflows, store, recorder,
		outbound{syncer: syncer, bus: bus}, notifier, classifier, logger)

	var observer service.UseCaseObserver = service.NoopUseCaseObserver{}
	if os.Getenv("BEACON_DEBUG") != "" {
		observer = service.NewLogUseCaseObserver(os.Stderr)
	}

	perms := service.NewRolePermissions(userRepo)
	initiatives := service.NewInitiativeService(
		store, coordinator, recorder, dispatcher, bus, syncer, changeRepo, perms, observer)

	go syncer.Run(ctx)
	go coordinator.Run(ctx)
	go dispatcher.Run(ctx)
	defer syncer.ForceSyncNow()

	app := &cli.App{
		Initiatives:   initiatives,
		Notifications: notifier,
		Workflows:     service.NewWorkflowService(dispatcher),
		Users:         service.NewUserService(userRepo),
		Bus:           bus,
	}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	bus.Connect(os.Getenv("BEACON_USER"))

	return cli.NewRootCmd(app).Execute()
}
