/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-14 16:20:33
 * @FilePath: \guerrilla-go-app\backend\cmd\server\main.go
 * @LastEditTime: 2025-10-14 16:20:39
 */
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guerrilla-go-app/backend/internal/app"
	"guerrilla-go-app/backend/internal/bootstrap"
	appLogger "guerrilla-go-app/backend/internal/infra/logger"
	"guerrilla-go-app/backend/internal/infra/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zapLogger, err := appLogger.Init()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer appLogger.Sync()
	sugar := zapLogger.Sugar()

	metrics.MustRegister()

	resources, err := app.Bootstrap(ctx)
	if err != nil {
		sugar.Fatalw("bootstrap failed", "error", err)
	}
	defer func() {
		if err := resources.Close(); err != nil {
			sugar.Errorw("resource cleanup error", "error", err)
		}
	}()

	application := bootstrap.BuildApplication(sugar, resources)

	sugar.Infow("agent starting",
		"mode", resources.Flags.Mode,
		"port", resources.Flags.Port,
		"cycle_interval", resources.Flags.CycleInterval.String(),
	)

	application.Scheduler.Start(ctx)
	defer application.Scheduler.Stop()

	srv := &http.Server{
		Addr:    ":" + resources.Flags.Port,
		Handler: application.Router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("http server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("http shutdown error", "error", err)
	}
}
