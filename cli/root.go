// Package cli wires the hawkset commands: the annotation API server, the
// offline exporter, the export-job consumer and version reporting.
//
// Configuration follows the usual precedence: command-line flags override
// environment variables, which override the .hawkset.yaml config file
// discovered in the home or working directory.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hawkset.claimhawk.org/api"
	"hawkset.claimhawk.org/cache"
	"hawkset.claimhawk.org/common"
	"hawkset.claimhawk.org/db"
	"hawkset.claimhawk.org/queue"
	"hawkset.claimhawk.org/security"
)

var cfgFile string

// RootCmd starts the annotation API server. Subcommands cover the offline
// export path and the queue consumer.
var RootCmd = &cobra.Command{
	Use:   "hawkset",
	Short: "GUI-agent training dataset service",
	Long: `Hawkset Annotation Service

An HTTP API for building GUI-agent training datasets:
- Action schema discovery and command compilation
- Dataset and sample management backed by CouchDB
- Screenshot validation and storage
- Training-data export in conversation format, inline or via S3

Configuration can be provided via command-line flags, environment variables,
or a .hawkset.yaml configuration file.`,
	Run: runServer,
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.hawkset.yaml)")

	RootCmd.PersistentFlags().String("port", "", "Server port")

	RootCmd.PersistentFlags().String("couchdb-url", "", "CouchDB connection URL")
	RootCmd.PersistentFlags().String("database-name", "", "CouchDB database name")

	RootCmd.PersistentFlags().String("redis-addr", "", "Redis address for the stats cache")
	RootCmd.PersistentFlags().String("redis-password", "", "Redis password")

	RootCmd.PersistentFlags().String("rabbitmq-url", "", "RabbitMQ connection URL")
	RootCmd.PersistentFlags().String("queue-name", "", "RabbitMQ export queue name")

	RootCmd.PersistentFlags().String("jwt-secret", "", "JWT secret key")

	RootCmd.PersistentFlags().String("s3-endpoint", "", "S3 endpoint for export artifacts")
	RootCmd.PersistentFlags().String("s3-bucket", "", "S3 bucket for export artifacts")
	RootCmd.PersistentFlags().String("s3-access-key", "", "S3 access key")
	RootCmd.PersistentFlags().String("s3-secret-key", "", "S3 secret key")

	viper.BindPFlag("port", RootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("couchdb.url", RootCmd.PersistentFlags().Lookup("couchdb-url"))
	viper.BindPFlag("couchdb.database_name", RootCmd.PersistentFlags().Lookup("database-name"))
	viper.BindPFlag("redis.addr", RootCmd.PersistentFlags().Lookup("redis-addr"))
	viper.BindPFlag("redis.password", RootCmd.PersistentFlags().Lookup("redis-password"))
	viper.BindPFlag("rabbitmq.url", RootCmd.PersistentFlags().Lookup("rabbitmq-url"))
	viper.BindPFlag("rabbitmq.queue_name", RootCmd.PersistentFlags().Lookup("queue-name"))
	viper.BindPFlag("jwt.secret", RootCmd.PersistentFlags().Lookup("jwt-secret"))
	viper.BindPFlag("s3.endpoint", RootCmd.PersistentFlags().Lookup("s3-endpoint"))
	viper.BindPFlag("s3.bucket", RootCmd.PersistentFlags().Lookup("s3-bucket"))
	viper.BindPFlag("s3.access_key", RootCmd.PersistentFlags().Lookup("s3-access-key"))
	viper.BindPFlag("s3.secret_key", RootCmd.PersistentFlags().Lookup("s3-secret-key"))

	viper.SetDefault("port", "8080")
	viper.SetDefault("couchdb.database_name", "hawkset")
	viper.SetDefault("rabbitmq.queue_name", "hawkset-exports")
	viper.SetDefault("s3.bucket", "hawkset-exports")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".hawkset")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the service configuration from viper. The users map
// comes from the config file only; there is no flag for credentials.
func loadConfig() common.ServiceConfig {
	return common.ServiceConfig{
		Port:          viper.GetString("port"),
		CouchDBURL:    viper.GetString("couchdb.url"),
		DatabaseName:  viper.GetString("couchdb.database_name"),
		RedisAddr:     viper.GetString("redis.addr"),
		RedisPassword: viper.GetString("redis.password"),
		RabbitMQURL:   viper.GetString("rabbitmq.url"),
		QueueName:     viper.GetString("rabbitmq.queue_name"),
		JWTSecret:     viper.GetString("jwt.secret"),
		S3Endpoint:    viper.GetString("s3.endpoint"),
		S3Bucket:      viper.GetString("s3.bucket"),
		S3AccessKey:   viper.GetString("s3.access_key"),
		S3SecretKey:   viper.GetString("s3.secret_key"),
		Users:         viper.GetStringMapString("users"),
	}
}

func runServer(cmd *cobra.Command, args []string) {
	config := loadConfig()

	store, err := db.NewCouchDBService(config)
	if err != nil {
		common.Logger.Fatal("Failed to initialize CouchDB service: ", err)
	}
	defer store.Close()

	handlers := &api.Handlers{
		Store:  store,
		JWT:    security.NewJWTService(config.JWTSecret),
		Config: config,
	}

	// Stats cache and async export are optional: without redis the stats
	// endpoint hits CouchDB directly, without RabbitMQ ?upload=s3 answers 503.
	if config.RedisAddr != "" {
		statsCache := cache.NewStatsCache(config.RedisAddr, config.RedisPassword)
		if err := statsCache.Ping(context.Background()); err != nil {
			common.Logger.Warn("Stats cache unavailable, continuing without it: ", err)
		} else {
			handlers.Cache = statsCache
			defer statsCache.Close()
		}
	}

	if config.RabbitMQURL != "" {
		publisher, err := queue.NewRabbitMQService(config)
		if err != nil {
			common.Logger.Fatal("Failed to initialize RabbitMQ service: ", err)
		}
		handlers.Publisher = publisher
		defer publisher.Close()
	}

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.SetupRoutes(e, handlers)

	go func() {
		common.Logger.Info("Server starting on port ", config.Port)
		if err := e.Start(":" + config.Port); err != nil && err != http.ErrServerClosed {
			common.Logger.Fatal("Failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	common.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		common.Logger.Fatal(err)
	}
}
