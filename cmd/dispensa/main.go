package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecodispensa/dispensa/internal/ai"
	"github.com/ecodispensa/dispensa/internal/backup"
	"github.com/ecodispensa/dispensa/internal/database"
	"github.com/ecodispensa/dispensa/internal/logging"
	"github.com/ecodispensa/dispensa/internal/remote"
	"github.com/ecodispensa/dispensa/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("DISPENSA_LOG_LEVEL"))

	port := os.Getenv("DISPENSA_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DISPENSA_DB_PATH")
	if dbPath == "" {
		dbPath = "dispensa.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	remoteClient := remote.NewClient(remote.Config{
		BaseURL: os.Getenv("DISPENSA_SUPABASE_URL"),
		APIKey:  os.Getenv("DISPENSA_SUPABASE_ANON_KEY"),
	})

	cfg := server.Config{
		PushVAPIDPublicKey:  os.Getenv("DISPENSA_VAPID_PUBLIC_KEY"),
		PushVAPIDPrivateKey: os.Getenv("DISPENSA_VAPID_PRIVATE_KEY"),
		AI: ai.Config{
			BaseURL: os.Getenv("DISPENSA_OPENAI_BASE_URL"),
			APIKey:  os.Getenv("DISPENSA_OPENAI_API_KEY"),
			Model:   os.Getenv("DISPENSA_OPENAI_MODEL"),
		},
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  os.Getenv("DISPENSA_S3_ENDPOINT"),
				Bucket:    os.Getenv("DISPENSA_S3_BUCKET"),
				Region:    os.Getenv("DISPENSA_S3_REGION"),
				AccessKey: os.Getenv("DISPENSA_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("DISPENSA_S3_SECRET_KEY"),
			},
			Passphrase: os.Getenv("DISPENSA_BACKUP_PASSPHRASE"),
		},
	}

	srv := server.New(db, remoteClient, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Collections follow the account: load them on sign-in, drop stale
	// state on sign-out.
	sub := remoteClient.Subscribe(func(event string, _ *remote.Session) {
		switch event {
		case "signed_in", "token_refreshed":
			srv.Engine().ReloadPantry(ctx)
			srv.Engine().ReloadShopping(ctx)
		}
	})
	defer sub.Unsubscribe()

	if notifier := srv.Notifier(); notifier != nil {
		notifier.Start(ctx)
		defer notifier.Stop()
	}
	srv.BackupManager().Start(ctx)
	defer srv.BackupManager().Stop()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second, // recipe generation can take a while
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Dispensa running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	fmt.Println("\nShutting down...")
	srv.Engine().Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
