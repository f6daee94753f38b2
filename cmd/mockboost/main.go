// Package main implements a standalone mock boost engine for E2E testing.
package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkarel/boostgate/internal/testutil/mockboost"
)

// getPort returns the port from the PORT environment variable or the default.
func getPort() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	return port
}

func main() {
	port := getPort()
	server := mockboost.New()

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: server.Handler(),
	}

	done := make(chan bool)
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down mockboost server...")
		//nolint:errcheck
		httpServer.Close()
		close(done)
	}()

	log.Printf("mockboost listening on :%s", port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}

	<-done
	log.Println("mockboost stopped")
}
