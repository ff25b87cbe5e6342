package main

import (
	"context"
	"log"
	"time"

	"foodorder/internal/config"
	"foodorder/internal/database"
	"foodorder/internal/routes"
	"foodorder/internal/services"
)

func main() {
	config.Load()
	if err := config.AppEnv.Validate(); err != nil {
		log.Fatal(err)
	}

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}()

	db := client.Database(config.AppEnv.DBName)
	log.Println("MongoDB connected to:", db.Name())

	database.EnsureIndexes(db)

	store := database.NewStore(db)
	notifications := services.NewNotificationService(store)
	authService := services.NewAuthService(store, store, services.TokenSettings{
		Secret:        config.AppEnv.JWTSecret,
		AccessTTL:     config.AppEnv.AccessTokenTTL,
		RememberMeTTL: config.AppEnv.RememberMeTTL,
		RefreshTTL:    config.AppEnv.RefreshTokenTTL,
	})

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.SeedAdmin(seedCtx, config.AppEnv.AdminEmail, config.AppEnv.AdminPassword); err != nil {
		log.Println("⚠️ admin seed warning:", err)
	}
	cancel()

	r := routes.NewRouter(routes.Services{
		Auth:          authService,
		Profiles:      services.NewProfileService(store),
		Catalog:       services.NewCatalogService(store, store),
		Carts:         services.NewCartService(store, store),
		Orders:        services.NewOrderService(store, store, notifications),
		Ratings:       services.NewRatingService(store),
		Notifications: notifications,
	}, routes.Options{
		JWTSecret:   config.AppEnv.JWTSecret,
		CORSOrigins: config.AppEnv.CORSOrigins,
		DB:          store,
	})

	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		log.Fatal(err)
	}
}
