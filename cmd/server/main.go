package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/robfig/cron"
	config "github.com/sunghyun0422/snf.semi/configs"
	"github.com/sunghyun0422/snf.semi/internal/api"
	"github.com/sunghyun0422/snf.semi/internal/database"
	job "github.com/sunghyun0422/snf.semi/internal/jobs"
	"github.com/sunghyun0422/snf.semi/internal/queue"
	"github.com/sunghyun0422/snf.semi/internal/repository"
	"github.com/sunghyun0422/snf.semi/internal/service"
	"github.com/sunghyun0422/snf.semi/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, dialect, err := database.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL, cfg.DatabaseAuthToken)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	reconciler := database.NewReconciler(db, dialect, database.Seed{
		AdminUsername:     cfg.AdminID,
		AdminPassword:     cfg.AdminPassword,
		AdminPasswordHash: cfg.AdminPasswordHash,
		OfferPassword:     cfg.OfferDefaultPassword,
	})
	ctx, cancel = context.WithTimeout(context.Background(), time.Minute)
	if err := reconciler.Ensure(ctx); err != nil {
		// Requests retry through the readiness middleware.
		slog.Error("startup schema reconcile failed", "error", err)
	}
	cancel()

	postRepo := repository.NewPostRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	homeRepo := repository.NewHomeSettingsRepository(db)
	offerAccessRepo := repository.NewOfferAccessRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)
	otpRepo := repository.NewOTPRepository(db)

	var store service.ObjectStore
	if cfg.R2.Enabled() {
		r2Service, err := service.NewR2Service(context.Background(), cfg.R2)
		if err != nil {
			log.Fatalf("Failed to configure object storage: %v", err)
		}
		store = r2Service
		slog.Info("attachments stored in R2", "bucket", cfg.R2.BucketName)
	}

	smtpMailer := service.NewSMTPMailer(cfg.SMTP)
	var mailer service.Mailer = smtpMailer
	var asynqServer *asynq.Server
	if cfg.RedisURI != "" {
		redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
		client := asynq.NewClient(redisConn)
		defer client.Close()
		mailer = queue.NewDeferredMailer(client, smtpMailer)

		asynqServer = asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 2,
		})
		queueW := queue.NewQueue(smtpMailer)
		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeSendMail, queueW.HandleSendMailTask)

		log.Println("Starting the Asynq server...")
		if err := asynqServer.Start(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}
	if !mailer.Enabled() {
		slog.Warn("SMTP is not configured; inquiries and verification codes are disabled")
	}

	offerService := service.NewOfferService(postRepo, attachmentRepo, store)
	app, err := api.NewApp(api.Deps{
		SiteName:   cfg.SiteName,
		Reconciler: reconciler,
		Signer:     session.NewSigner(cfg.SecretKey),
		Auth:       service.NewAuthService(adminRepo, offerAccessRepo),
		OTP:        service.NewOTPService(otpRepo, adminRepo, mailer, cfg.OTPEmail, cfg.SiteName, nil),
		Offers:     offerService,
		Settings:   service.NewSettingsService(homeRepo),
		Inquiry:    service.NewInquiryService(offerService, mailer, cfg.AdminEmail, cfg.SiteName),
		Now:        time.Now,
		AccessLog:  true,
	})
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	// cron jobs
	otpPruneJob := job.NewOTPPruneJob(otpRepo)

	c := cron.New()
	c.AddFunc("@every 06h00m00s", otpPruneJob.PruneOTPs)
	c.Start()
	defer c.Stop()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, asynqServer)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, asynqServer *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.Printf("Failed to shut down server: %v", err)
	}
	if asynqServer != nil {
		asynqServer.Shutdown()
	}

	log.Println("Server shutdown complete.")
}
