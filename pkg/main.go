package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	pkg "git.solsynth.dev/hypernet/forum/pkg/internal"
	"git.solsynth.dev/hypernet/forum/pkg/internal/cache"
	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"git.solsynth.dev/hypernet/forum/pkg/internal/gap"
	"git.solsynth.dev/hypernet/forum/pkg/internal/grpc"
	"git.solsynth.dev/hypernet/forum/pkg/internal/http"
	"git.solsynth.dev/hypernet/forum/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services"
	"github.com/fatih/color"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Println(color.YellowString(" _____                            \n|  ___|__  _ __ _   _ _ __ ___   \n| |_ / _ \\| '__| | | | '_ ` _ \\  \n|  _| (_) | |  | |_| | | | | | | \n|_|  \\___/|_|   \\__,_|_| |_| |_| "))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("Hypernet.Forum"), pkg.AppVersion)
	fmt.Printf("The community forum service in Hypernet\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	if viper.GetBool("debug.verbose") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Connect to database
	if err := database.NewGorm(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// Initialize cache
	if err := cache.NewStore(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when initializing cache.")
	}

	if err := services.EnsureBootstrapAdmin(); err != nil {
		log.Error().Err(err).Msg("An error occurred when preparing the bootstrap administrator...")
	}

	// Connect to collaborators
	clients, err := gap.NewClients()
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when building collaborator clients...")
	}
	deps := &exts.Deps{
		Identity: clients.IdentityResolver(),
		Catalog:  clients.ProductCatalog(),
		Files:    clients.FileStorage(),
		Tokens:   clients.Tokens,
	}

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 60m", services.DoAutoDatabaseCleanup)
	quartz.AddFunc("@daily", services.DoAutoUploadCleanup)
	quartz.AddFunc("@daily", services.DoAutoCounterReconcile)
	quartz.Start()

	// Server
	server := http.NewServer(deps)
	go server.Listen()

	rpc := grpc.NewGrpc()
	go func() {
		if err := rpc.Listen(); err != nil {
			log.Error().Err(err).Msg("An error occurred when serving grpc...")
		}
	}()
	quartz.AddFunc("@every 1m", func() {
		rpc.RefreshHealth(context.Background())
	})

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	quartz.Stop()
	rpc.Stop()
	if err := server.Shutdown(); err != nil {
		log.Error().Err(err).Msg("An error occurred when shutting down server...")
	}
}
