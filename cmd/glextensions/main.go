// Gray Logic Extensions - settings mixins for the Gray Logic core.
//
// The plugin attaches a settings mixin to every device the core announces
// over MQTT, so users can give any device an alias, a room and a favourite
// flag without the device's own driver knowing about it. Mixin values are
// stored in a local SQLite database; the merged settings are served to the
// core over MQTT and to admin tools over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/gray-logic-extensions/migrations"

	"github.com/nerrad567/gray-logic-extensions/internal/api"
	"github.com/nerrad567/gray-logic-extensions/internal/hostbridge"
	"github.com/nerrad567/gray-logic-extensions/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-extensions/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-extensions/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-extensions/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-extensions/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-extensions/internal/plugin"
	"github.com/nerrad567/gray-logic-extensions/internal/sdk"
	"github.com/nerrad567/gray-logic-extensions/internal/storage"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"
	configEnvVar      = "GRAYLOGIC_EXTENSIONS_CONFIG"

	// shutdownTimeout bounds the release notifications sent on shutdown.
	shutdownTimeout = 5 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the plugin together and blocks until ctx is cancelled.
// Deferred cleanups run in reverse order of startup.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Gray Logic Extensions",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"native_id", cfg.Plugin.NativeID,
		"level", cfg.Logging.Level,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	store := storage.NewSQLiteStore(db.DB)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.With("component", "mqtt"))
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT connected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Connect to InfluxDB (optional). Interfaces stay nil when disabled.
	var (
		influxClient     *influxdb.Client
		eventRecorder    hostbridge.EventRecorder
		settingsRecorder api.SettingsRecorder
	)
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		eventRecorder = influxClient
		settingsRecorder = influxClient
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Host bridge: the core's device manager as seen over MQTT.
	bridge, err := hostbridge.New(hostbridge.Config{
		MQTT:           mqttClient,
		Recorder:       eventRecorder,
		RequestTimeout: cfg.GetRequestTimeout(),
		QoS:            byte(cfg.MQTT.QoS),
		Logger:         log.With("component", "hostbridge"),
	})
	if err != nil {
		return fmt.Errorf("creating host bridge: %w", err)
	}
	defer func() {
		log.Info("closing host bridge")
		if closeErr := bridge.Close(); closeErr != nil {
			log.Error("error closing host bridge", "error", closeErr)
		}
	}()

	// The core does not announce the plugin's own device, but mixins look
	// up its name for error placeholders.
	bridge.Register(sdk.DeviceState{
		ID:         cfg.Plugin.NativeID,
		NativeID:   cfg.Plugin.NativeID,
		Name:       cfg.Plugin.Name,
		Interfaces: []sdk.Interface{sdk.InterfaceMixinHost},
	})

	provider, err := plugin.New(plugin.Config{
		NativeID:      cfg.Plugin.NativeID,
		Group:         cfg.Plugin.Group,
		GroupKey:      cfg.Plugin.GroupKey,
		StorageSuffix: cfg.Plugin.StorageSuffix,
		Manager:       bridge,
		Storage: func(nativeID string) sdk.Storage {
			return store.Bucket(nativeID)
		},
		Resolve: func(state sdk.DeviceState) any {
			return bridge.Remote(state.NativeID)
		},
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("creating mixin provider: %w", err)
	}
	defer func() {
		// ctx is already cancelled here; release notifications get their own deadline.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		provider.Close(releaseCtx)
	}()

	bridge.OnDevice(provider.HandleDevice)
	if startErr := bridge.Start(ctx); startErr != nil {
		return fmt.Errorf("starting host bridge: %w", startErr)
	}

	// Settings API
	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		Security: cfg.Security,
		Logger:   log,
		Provider: provider,
		Recorder: settingsRecorder,
		Version:  version,
		Storage:  store,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, db, mqttClient, influxClient, apiServer); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	// Deferred cleanups: API, provider release, host bridge, InfluxDB, MQTT, database.
	return nil
}

// getConfigPath returns GRAYLOGIC_EXTENSIONS_CONFIG if set, otherwise the default path.
func getConfigPath() string {
	if path := os.Getenv(configEnvVar); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthChecker is implemented by every long-lived dependency.
type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

type namedCheck struct {
	name    string
	checker healthChecker
}

// healthCheck verifies all infrastructure connections are healthy.
// influxClient may be nil when InfluxDB is disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, apiServer *api.Server) error {
	checks := []namedCheck{
		{"database", db},
		{"mqtt", mqttClient},
		{"api", apiServer},
	}
	if influxClient != nil {
		checks = append(checks, namedCheck{"influxdb", influxClient})
	}
	return runChecks(ctx, checks)
}

// runChecks returns the first failing check.
func runChecks(ctx context.Context, checks []namedCheck) error {
	for _, c := range checks {
		if err := c.checker.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
	}
	return nil
}
