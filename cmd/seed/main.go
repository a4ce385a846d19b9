package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/storefront-backend/internal/app"
	"github.com/yungbote/storefront-backend/internal/data/db"
	"github.com/yungbote/storefront-backend/internal/data/repos"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/envutil"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/seed"
	"github.com/yungbote/storefront-backend/internal/services"
)

func main() {
	catalogPath := flag.String("catalog", "", "path to a catalog YAML file (defaults to the embedded fixture)")
	promote := flag.String("promote", "", "email of an existing user to grant the admin role")
	skipCatalog := flag.Bool("skip-catalog", false, "only run -promote")
	flag.Parse()

	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := app.LoadConfig(log)
	dbService, err := db.NewService(log, cfg.DB)
	if err != nil {
		log.Fatal("init database", "error", err)
	}
	defer dbService.Close()
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Fatal("automigrate", "error", err)
	}
	theDB := dbService.DB()
	ctx := context.Background()

	if !*skipCatalog {
		catalog, err := seed.LoadCatalog(*catalogPath)
		if err != nil {
			log.Fatal("load catalog", "error", err)
		}
		if _, err := seed.Apply(dbctx.New(ctx), log, repos.NewProductRepo(theDB, log), catalog); err != nil {
			log.Fatal("seed catalog", "error", err)
		}
	}

	if *promote != "" {
		userService := services.NewUserService(theDB, log, repos.NewUserRepo(theDB, log))
		u, err := userService.PromoteByEmail(ctx, *promote)
		if err != nil {
			log.Fatal("promote user", "error", err)
		}
		log.Info("User promoted to admin", "user_id", u.ID)
	}
}
