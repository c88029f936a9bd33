package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/berlinbruno/podpirate/internal/config"
	"github.com/berlinbruno/podpirate/internal/logging"
	"github.com/berlinbruno/podpirate/internal/mailer"
	"github.com/berlinbruno/podpirate/internal/metrics"
	"github.com/berlinbruno/podpirate/internal/queue"
	"github.com/berlinbruno/podpirate/pkg/models"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewDefaultLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	q, err := queue.New(cfg.Queue)
	if err != nil {
		logger.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()

	sender := mailer.NewSMTPSender(cfg.Mail)
	dispatcher := mailer.NewDispatcher(sender, cfg.Mail, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down worker gracefully")
		cancel()
	}()

	// Export queue depth while the worker runs.
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				depth, err := q.Depth()
				if err != nil {
					logger.ErrorWithErr("failed to inspect mail queue", err)
					continue
				}
				metrics.MailQueueDepth.Set(float64(depth))
			}
		}
	}()

	jobHandler := func(job *models.MailJob) error {
		logger.Infof("Processing mail job %s (%s)", job.ID, job.Kind)

		if err := dispatcher.Dispatch(job); err != nil {
			metrics.RecordMailDelivery(string(job.Kind), "failure")
			logger.ErrorWithErr("failed to deliver mail job "+job.ID, err)
			return err
		}

		metrics.RecordMailDelivery(string(job.Kind), "success")
		return nil
	}

	logger.Info("Worker started, waiting for mail jobs")
	if err := q.ConsumeMail(ctx, jobHandler); err != nil {
		logger.Fatalf("Failed to consume mail jobs: %v", err)
	}

	<-ctx.Done()
	logger.Info("Worker stopped")
}
