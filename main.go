package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"momo-telegram/backend"
	"momo-telegram/bot"
	"momo-telegram/cache"
	"momo-telegram/config"
	"momo-telegram/db"
	"momo-telegram/models"
	"momo-telegram/services"
	"momo-telegram/storage"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			runMigrate(cfg)
			return
		case "gen-login":
			runGenLogin()
			return
		}
	}

	if cfg.Telegram.Token == "" {
		fmt.Fprintln(os.Stderr, "TOKEN not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Init(ctx, cfg.DB); err != nil {
		fmt.Fprintln(os.Stderr, "db:", err)
		os.Exit(1)
	}
	defer db.Close()

	// AUTO_MIGRATE=1 (or "true") applies the embedded migrations on start.
	if v := strings.TrimSpace(os.Getenv("AUTO_MIGRATE")); v == "1" || strings.EqualFold(v, "true") {
		if err := applyMigrations(ctx, false); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	}

	client := backend.New(cfg.Backend)
	catalog := services.NewCatalog(client, menuCache(ctx, cfg.Redis))
	store := services.PgStore{}
	checkout := services.NewCheckout(client, store, store)

	storefront, err := bot.NewStorefront(cfg, catalog, store, checkout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bot:", err)
		os.Exit(1)
	}

	var wg sync.WaitGroup
	if cfg.Telegram.AdminToken != "" {
		admin, err := newAdminBot(ctx, cfg, client, catalog)
		if err != nil {
			fmt.Fprintln(os.Stderr, "admin bot:", err)
			os.Exit(1)
		}
		watcher := services.NewOrderWatcher(client, cfg.Admin.PollInterval, func(ctx context.Context, orders []models.Order) {
			log.Printf("%d new order(s)", len(orders))
			admin.NotifyNewOrders(ctx, orders)
		})
		wg.Add(2)
		go func() {
			defer wg.Done()
			admin.Start(ctx)
		}()
		go func() {
			defer wg.Done()
			watcher.Run(ctx)
		}()
		log.Println("Admin bot started.")
	}

	log.Println("Bot started.")
	storefront.Start(ctx)
	wg.Wait()
	log.Println("Stopped.")
}

// menuCache returns nil when Redis is not configured or unreachable; the
// catalog then fetches from the backend on every miss.
func menuCache(ctx context.Context, cfg config.RedisConfig) services.MenuCache {
	if cfg.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis ping failed, menu cache disabled: %v", err)
		_ = rdb.Close()
		return nil
	}
	log.Printf("menu cache on redis %s", cfg.Addr)
	return cache.NewMenuCache(rdb, cfg.MenuTTL)
}

func newAdminBot(ctx context.Context, cfg *config.Config, client *backend.Client, catalog *services.Catalog) (*bot.AdminBot, error) {
	var images bot.ImageUploader
	if cfg.Storage.Enabled() {
		r2, err := storage.NewR2Client(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		images = r2
	} else {
		log.Println("R2 not configured, /image is disabled")
	}
	if strings.TrimSpace(cfg.Telegram.Login) == "" {
		log.Println("LOGIN not set, nobody can log in to the admin bot")
	}

	admin, err := bot.NewAdminBot(cfg, client, images, catalog, bot.PgAdminStore{})
	if err != nil {
		return nil, err
	}
	if err := admin.LoadSessions(ctx); err != nil {
		log.Printf("load admin sessions: %v", err)
	}
	return admin, nil
}

func runMigrate(cfg *config.Config) {
	ctx := context.Background()
	if err := db.Init(ctx, cfg.DB); err != nil {
		fmt.Fprintln(os.Stderr, "db:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := applyMigrations(ctx, true); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

// runGenLogin prints a fresh admin password and its bcrypt hash for LOGIN.
func runGenLogin() {
	pw, err := services.GenerateAdminPassword()
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate:", err)
		os.Exit(1)
	}
	hash, err := services.HashAdminPassword(pw)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash:", err)
		os.Exit(1)
	}
	fmt.Println("password:", pw)
	// single quotes keep godotenv from expanding the $ in the hash
	fmt.Printf("LOGIN='%s'\n", hash)
}
