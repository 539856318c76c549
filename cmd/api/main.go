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

	"github.com/joho/godotenv"
	"github.com/qwiktax/lsp-oms/internal/config"
	"github.com/qwiktax/lsp-oms/internal/infrastructure/cognito"
	"github.com/qwiktax/lsp-oms/internal/infrastructure/dynamo"
	"github.com/qwiktax/lsp-oms/internal/infrastructure/google"
	"github.com/qwiktax/lsp-oms/internal/infrastructure/jwks"
	jwtinfra "github.com/qwiktax/lsp-oms/internal/infrastructure/jwt"
	s3infra "github.com/qwiktax/lsp-oms/internal/infrastructure/s3"
	"github.com/qwiktax/lsp-oms/internal/infrastructure/smtp"
	"github.com/qwiktax/lsp-oms/internal/infrastructure/sns"
	transporthttp "github.com/qwiktax/lsp-oms/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Bootstrap the application table (creates it if it doesn't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTable)
	table := dynamo.NewTable(dynamoClient, cfg.DynamoTable)

	directory := cognito.NewClient(cfg)
	jwtProvider := jwtinfra.NewProvider(cfg.JWTSecret)

	// Directory token verification needs the pool's JWKS endpoint. Without an
	// issuer the admin surfaces run unauthenticated (local development).
	var providerVerifier *jwks.Verifier
	if cfg.CognitoIssuer != "" {
		v, err := jwks.NewVerifier(context.Background(), cfg.CognitoIssuer)
		if err != nil {
			log.Printf("WARN: JWKS verifier not available: %v", err)
		} else {
			providerVerifier = v
		}
	} else {
		log.Println("WARN: COGNITO_ISSUER not set, directory auth disabled")
	}

	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	mailer := smtp.NewMailer(cfg)

	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available, OTP delivery to real numbers disabled: %v", err)
	}

	deps := &transporthttp.Deps{
		AuthRepo:       dynamo.NewAuthRepo(table),
		EnterpriseRepo: dynamo.NewEnterpriseRepo(table),
		SiteRepo:       dynamo.NewSiteRepo(table),
		Directory:      directory,
		JWTProvider:    jwtProvider,
		GoogleVerifier: google.NewVerifier(cfg.GoogleClientID),
		SMSSender:      smsSender,
		Mailer:         mailer,
		S3Store:        s3Store,
	}
	if providerVerifier != nil {
		deps.ProviderVerifier = providerVerifier
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
