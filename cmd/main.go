package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theonefromthesky/smart-heating/internal/engine"
	"github.com/theonefromthesky/smart-heating/internal/handlers"
	"github.com/theonefromthesky/smart-heating/internal/logger"
	"github.com/theonefromthesky/smart-heating/internal/mqtt"
	"github.com/theonefromthesky/smart-heating/internal/repository"
	"github.com/theonefromthesky/smart-heating/internal/repository/db"
	"github.com/theonefromthesky/smart-heating/internal/server"
	"github.com/theonefromthesky/smart-heating/internal/service"

	"github.com/spf13/viper"
)

const (
	defaultTick      = 1 * time.Minute
	defaultSimTick   = 5 * time.Second
	relayReadTimeout = 2 * time.Second
)

func main() {
	// load config.yml first so the log level is configurable
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log.level"))

	// open DB
	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// broker connection and the relay behind it
	client, boiler, err := connectBoiler(log)
	if err != nil {
		log.Fatalw("failed to connect mqtt broker", "err", err)
	}
	if client != nil {
		defer func() { _ = client.Close() }()
	}

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	services := service.NewService(repos, boiler, controlOptions, log)
	apiHandler := handlers.NewHandler(services, log)

	// restore persisted state and adopt the relay's retained state
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := services.Thermostat.Restore(ctx); err != nil {
		log.Fatalw("failed to restore thermostat snapshot", "err", err)
	}
	if sw, ok := boiler.(*mqtt.BoilerSwitch); ok {
		on, known, rerr := sw.ReadState(relayReadTimeout)
		if rerr != nil {
			log.Warnw("relay state unreadable, assuming off", "err", rerr)
		}
		services.Thermostat.Resync(time.Now().UTC(), on, known)
	}

	// sensor and schedule ingress
	if client != nil {
		ingress := service.NewIngress(services.Thermostat, log)
		if err := ingress.Bind(client, ingressTopics()); err != nil {
			log.Fatalw("failed to subscribe ingress topics", "err", err)
		}
	}

	// control heartbeat
	go services.Ticker.Run(ctx, defaultTick)

	// optional synthetic room for development
	if viper.GetBool("simulator.enabled") {
		log.Infow("simulator enabled")
		go services.Simulator.Run(ctx, defaultSimTick)
	}

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")

	def := engine.DefaultConfig()
	viper.SetDefault("thermostat.preheat_enabled", def.PreheatEnabled)
	viper.SetDefault("thermostat.overshoot_enabled", def.OvershootEnabled)
	viper.SetDefault("thermostat.learning_enabled", def.LearningEnabled)
	viper.SetDefault("thermostat.weather_comp_enabled", def.WeatherCompEnabled)
	viper.SetDefault("thermostat.hysteresis_c", def.Hysteresis)
	viper.SetDefault("thermostat.max_on_time", def.MaxOnTime)
	viper.SetDefault("thermostat.max_preheat_time", def.MaxPreheatTime)
	viper.SetDefault("thermostat.min_burn_time", def.MinBurnTime)
	viper.SetDefault("thermostat.max_loss_tracking_time", def.MaxLossTrackingTime)
	viper.SetDefault("thermostat.weather_sensitivity", def.WeatherSensitivity)
	viper.SetDefault("thermostat.comfort_c", def.ComfortTemp)
	viper.SetDefault("thermostat.setback_c", def.SetbackTemp)

	return viper.ReadInConfig()
}

// controlOptions maps the thermostat config section onto the control
// tunables. Re-read on every options reload.
func controlOptions() engine.Config {
	return engine.Config{
		PreheatEnabled:      viper.GetBool("thermostat.preheat_enabled"),
		OvershootEnabled:    viper.GetBool("thermostat.overshoot_enabled"),
		LearningEnabled:     viper.GetBool("thermostat.learning_enabled"),
		WeatherCompEnabled:  viper.GetBool("thermostat.weather_comp_enabled"),
		Hysteresis:          viper.GetFloat64("thermostat.hysteresis_c"),
		MaxOnTime:           viper.GetDuration("thermostat.max_on_time"),
		MaxPreheatTime:      viper.GetDuration("thermostat.max_preheat_time"),
		MinBurnTime:         viper.GetDuration("thermostat.min_burn_time"),
		MaxLossTrackingTime: viper.GetDuration("thermostat.max_loss_tracking_time"),
		WeatherSensitivity:  viper.GetFloat64("thermostat.weather_sensitivity"),
		ComfortTemp:         viper.GetFloat64("thermostat.comfort_c"),
		SetbackTemp:         viper.GetFloat64("thermostat.setback_c"),
	}
}

func ingressTopics() service.IngressTopics {
	return service.IngressTopics{
		IndoorTemp:  viper.GetString("mqtt.topics.indoor_temp"),
		OutdoorTemp: viper.GetString("mqtt.topics.outdoor_temp"),
		Schedule:    viper.GetString("mqtt.topics.schedule"),
	}
}

// connectBoiler connects to the broker and returns the relay switch. With
// MQTT disabled the relay is replaced by a log-only stand-in, which pairs
// with the simulator for development.
func connectBoiler(log *logger.Logger) (mqtt.Client, service.Boiler, error) {
	if !viper.GetBool("mqtt.enabled") {
		log.Infow("mqtt disabled, boiler commands are log-only")
		return nil, &loggingBoiler{log: log}, nil
	}

	client, err := mqtt.NewRealClient(mqtt.Options{
		Broker:   viper.GetString("mqtt.broker"),
		ClientID: viper.GetString("mqtt.client_id"),
		Username: viper.GetString("mqtt.username"),
		Password: viper.GetString("mqtt.password"),
	})
	if err != nil {
		return nil, nil, err
	}

	sw := mqtt.NewBoilerSwitch(client,
		viper.GetString("mqtt.topics.boiler_command"),
		viper.GetString("mqtt.topics.boiler_state"),
	)
	return client, sw, nil
}

// loggingBoiler stands in for the relay when no broker is configured.
type loggingBoiler struct {
	log *logger.Logger
}

func (b *loggingBoiler) TurnOn() error {
	b.log.Infow("boiler on (log-only)")
	return nil
}

func (b *loggingBoiler) TurnOff() error {
	b.log.Infow("boiler off (log-only)")
	return nil
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "heating.db")
		dbPath = "heating.db"
	}
	return db.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
