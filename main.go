package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cinerate/cinerate/config"
	"github.com/cinerate/cinerate/database"
	"github.com/cinerate/cinerate/logger"
	"github.com/cinerate/cinerate/web"
	"github.com/cinerate/cinerate/web/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	level, err := logger.ParseLevel(string(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("unknown log level %q: %w", cfg.LogLevel, err)
	}
	return logger.New(logger.Options{Level: level, Dir: cfg.LogFolder}), nil
}

// setup loads the configuration, the logger and the migrated database.
func setup() (*config.Config, *logger.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	lg, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := database.InitDB(cfg.Database, cfg.Debug)
	if err != nil {
		_ = lg.Close()
		return nil, nil, nil, err
	}
	return cfg, lg, db, nil
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	cfg, lg, db, err := setup()
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Close()
	defer database.CloseDB(db)

	server := web.NewServer(cfg, db, lg)
	if err := server.Start(); err != nil {
		lg.Error("start server failed:", err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			if err := server.Stop(); err != nil {
				lg.Warning("stop server err:", err)
			}
			server = web.NewServer(cfg, db, lg)
			if err := server.Start(); err != nil {
				lg.Error("restart server failed:", err)
				return
			}
		default:
			if err := server.Stop(); err != nil {
				lg.Warning("stop server err:", err)
			}
			return
		}
	}
}

func migrateDb() {
	_, lg, db, err := setup()
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Close()
	fmt.Println("Database migrated")
	if err := database.CloseDB(db); err != nil {
		fmt.Println("close database failed:", err)
	}
}

func createAdmin(username, email, password string) {
	cfg, lg, db, err := setup()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer lg.Close()
	defer database.CloseDB(db)

	users := service.NewUserService(db, lg, cfg.BcryptCost)
	created, err := users.BootstrapAdmin(context.Background(), username, email, password)
	switch {
	case err != nil:
		fmt.Println("create admin failed:", err)
	case !created:
		fmt.Println("an admin account already exists")
	default:
		fmt.Printf("admin %s created\n", email)
	}
}

func main() {
	var rootCmd = &cobra.Command{
		Use: config.GetName(),
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.GetName(), config.GetVersion())
		},
	}

	var adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}

	var createCmd = &cobra.Command{
		Use:   "create",
		Short: "Create the first admin account",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			createAdmin(username, email, password)
		},
	}

	createCmd.Flags().String("username", "admin", "admin username")
	createCmd.Flags().String("email", "", "admin email")
	createCmd.Flags().String("password", "", "admin password")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(createCmd)
	rootCmd.AddCommand(runCmd, migrateCmd, versionCmd, adminCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
