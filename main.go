package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	api "github.com/mymedicos/discuss-backend/api"
	"github.com/mymedicos/discuss-backend/auth"
	"github.com/mymedicos/discuss-backend/config"
	"github.com/mymedicos/discuss-backend/database"
	"github.com/mymedicos/discuss-backend/models"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c := config.New()
	setupLogging(c)

	if parameterPath := config.GetString(c, "SSM_PARAMETER_PATH", ""); parameterPath != "" {
		if err := overlaySSM(c, parameterPath); err != nil {
			log.Fatal().Err(err).Msg("Error loading configuration from SSM")
		}
	}

	log.Info().Str("dbType", config.GetString(c, "DB_TYPE", "postgres")).Msg("Connecting to database...")
	db, err := database.Open(c, database.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		log.Fatal().Err(err).Msg("Error testing database connection")
	}

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating query helpers...")
		models.GenerateQueries(db, config.GetString(c, "GENERATE_MODELS_PATH", "./query"))
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		reportColumnDrift(db)
		return
	}

	includeLegacy := config.GetString(c, "LEGACY_DATABASE_URL", "") == ""
	if err := database.Migrate(db, includeLegacy); err != nil {
		log.Fatal().Err(err).Msg("Error migrating database")
	}

	verifier, err := newVerifier(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error configuring authentication")
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(database.New(db), verifier, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(config.GetDuration(c, "SHUTDOWN_TIMEOUT_SECONDS", 30*time.Second))
}

func setupLogging(c map[string]string) {
	level, err := zerolog.ParseLevel(config.GetString(c, "LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.GetString(c, "LOG_FORMAT", "console") == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func overlaySSM(c map[string]string, parameterPath string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := config.NewSSMClient(ctx, config.GetString(c, "AWS_REGION", ""))
	if err != nil {
		return err
	}
	return config.OverlaySSM(ctx, client, parameterPath, c)
}

// newVerifier selects the identity provider from AUTH_PROVIDER.
func newVerifier(c map[string]string) (auth.Verifier, error) {
	switch provider := config.GetString(c, "AUTH_PROVIDER", "descope"); provider {
	case "descope":
		return auth.NewDescopeVerifier(config.GetString(c, "DESCOPE_PROJECT_ID", ""))
	case "jwt":
		return auth.NewJWTVerifier(config.GetString(c, "JWT_SECRET", ""), config.GetString(c, "JWT_ISSUER", ""))
	default:
		return nil, fmt.Errorf("unsupported AUTH_PROVIDER %q", provider)
	}
}

func reportColumnDrift(db *gorm.DB) {
	drift, err := models.ColumnDrift(db)
	if err != nil {
		log.Fatal().Err(err).Msg("Error generating column report")
	}
	if len(drift) == 0 {
		log.Info().Msg("No unmapped columns found")
		return
	}
	for table, columns := range drift {
		log.Warn().Str("table", table).Strs("columns", columns).Msg("Columns not mapped by any model field")
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
