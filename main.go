package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/liber-hq/liber/config"
	"github.com/liber-hq/liber/log"
	"github.com/liber-hq/liber/model"
	"github.com/liber-hq/liber/server"
	"github.com/liber-hq/liber/store"
	"github.com/liber-hq/liber/store/db"
	"github.com/liber-hq/liber/worker"
)

const greetingBanner = `
██      ██ ██████  ███████ ██████
██      ██ ██   ██ ██      ██   ██
██      ██ ██████  █████   ██████
██      ██ ██   ██ ██      ██   ██
███████ ██ ██████  ███████ ██   ██
`

var (
	configFile string
	host       string
	port       int
	data       string

	rootCmd = &cobra.Command{
		Use:   "liber",
		Short: "Liber is a library management system",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			database, err := db.NewDB()
			if err != nil {
				log.Error("Error connecting to database", zap.Error(err))
				return err
			}
			defer database.Close()
			if err := database.Migrate(ctx); err != nil {
				log.Error("Error migrating database", zap.Error(err))
				return err
			}

			s := store.NewStore(database.DB)
			if err := s.Ping(); err != nil {
				log.Error("Error pinging database", zap.Error(err))
				return err
			}

			ingestPool := worker.NewIngestPool(s, config.Opts.WorkerPoolSize)
			resumePendingJobs(s, ingestPool)

			sweeper := worker.NewOverdueSweeper(s, time.Duration(config.Opts.SweepInterval)*time.Minute)
			sweeper.Start(ctx)

			httpServer, err := server.StartServer(ctx, s, ingestPool)
			if err != nil {
				log.Error("Error starting server", zap.Error(err))
				return err
			}

			println(greetingBanner)
			log.Info("Liber started",
				zap.String("host", config.Opts.Host),
				zap.Int("port", config.Opts.Port),
				zap.String("data", config.Opts.Data))

			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)
			<-c

			log.Info("Shutting down")
			server.Shutdown(httpServer)
			return nil
		},
	}
)

// resumePendingJobs requeues ingest work left over from a previous run.
// Upload jobs lose their in-memory file handle across restarts, so only
// jobs driven by a stored path are resumable.
func resumePendingJobs(s *store.Store, pool worker.WorkPool) {
	jobs, err := s.ListPendingJobs()
	if err != nil {
		log.Warn("Failed to list pending jobs", zap.Error(err))
		return
	}
	for _, job := range jobs {
		if job.Type == model.JobTypeCoverConvert {
			go pool.Push(job)
		}
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&host, "host", "", "host to listen on")
	rootCmd.PersistentFlags().IntVar(&port, "port", 0, "port to listen on")
	rootCmd.PersistentFlags().StringVar(&data, "data", "", "data directory")

	cobra.OnInitialize(func() {
		if _, err := config.GetConfig(); err != nil {
			log.Fatal("Error loading config", zap.Error(err))
		}
		if configFile != "" {
			if _, err := config.ParseFile(configFile); err != nil {
				log.Fatal("Error parsing config file", zap.Error(err))
			}
		}
		// Flags beat the config file.
		if host != "" {
			config.Opts.Host = host
		}
		if port != 0 {
			config.Opts.Port = port
		}
		if data != "" {
			config.Opts.Data = data
		}
		config.Opts.DSN = filepath.Join(config.Opts.Data, "liber.db")

		log.Logger = log.NewLogger()
	})
}

func main() {
	defer log.Logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
