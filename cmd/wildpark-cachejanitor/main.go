package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	serverURL = flag.String("server-url", getEnv("WILDPARK_SERVER_URL", "http://localhost:8080"), "Base URL of the wildpark server")
	schedule  = flag.String("schedule", "30 3 * * *", "Cron schedule for cache cleanup (default: 03:30 UTC)")
	runOnce   = flag.Bool("run-once", false, "Run cleanup once and exit")
	timeout   = flag.Duration("timeout", 30*time.Second, "HTTP timeout for the cleanup call")
)

func main() {
	flag.Parse()

	client := &http.Client{Timeout: *timeout}

	if *runOnce {
		if err := runCleanup(client); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		log.Println("Cleanup completed successfully")
		return
	}

	c := cron.New()
	_, err := c.AddFunc(*schedule, func() {
		log.Println("Starting image cache cleanup")
		if err := runCleanup(client); err != nil {
			log.Printf("Cleanup failed: %v", err)
		} else {
			log.Println("Cleanup completed successfully")
		}
	})
	if err != nil {
		log.Fatalf("Invalid cron schedule %q: %v", *schedule, err)
	}

	c.Start()
	log.Printf("Cache janitor started, schedule %q against %s", *schedule, *serverURL)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx := c.Stop()
	<-ctx.Done()
	log.Println("Cache janitor stopped")
}

func runCleanup(client *http.Client) error {
	resp, err := client.Post(*serverURL+"/api/profile-image/cleanup", "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cleanup endpoint returned %d: %s", resp.StatusCode, body)
	}
	log.Printf("Cleanup response: %s", body)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
