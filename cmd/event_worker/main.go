package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-article-feed/config"
	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/internal/infrastructure/messaging"
	"github.com/oksasatya/go-article-feed/pkg/helpers"
	"github.com/oksasatya/go-article-feed/pkg/mailer"
)

// event_worker consumes domain events and sends the matching notification
// mail. With MAIL_SEND_ENABLED=false it only logs what it would send.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-event-worker", cfg.Env, cfg.LogLevel)

	if cfg.RabbitMQURL == "" || cfg.EventsQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}

	var sender mailer.Sender
	if cfg.MailSendEnabled {
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
			logger.Fatal("Mailgun not configured")
		}
		sender = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	} else {
		logger.Warn("MAIL_SEND_ENABLED=false; emails are logged, not sent")
	}

	consumer, err := messaging.NewConsumer(cfg.RabbitMQURL, cfg.EventsQueue, 16, logger)
	if err != nil {
		logger.Fatalf("amqp: %v", err)
	}
	defer consumer.Close()

	w := &worker{
		sender: sender,
		logger: logger,
		branding: helpers.Branding{
			AppName:     cfg.AppName,
			CompanyName: cfg.CompanyName,
			AppURL:      cfg.AppURL,
			SupportURL:  cfg.SupportURL,
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infof("event worker listening on queue=%s", cfg.EventsQueue)
	if err := consumer.Run(ctx, w.handle); err != nil {
		logger.Errorf("consumer stopped: %v", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

type worker struct {
	sender   mailer.Sender
	logger   logrus.FieldLogger
	branding helpers.Branding
}

func (w *worker) handle(ctx context.Context, e entity.Event) messaging.Outcome {
	job, ok := helpers.EmailJobForEvent(string(e.Type), e.Data, w.branding)
	if !ok {
		return messaging.Ack
	}
	if err := helpers.RenderJob(&job); err != nil {
		helpers.LogError(w.logger, "render failed", err, logrus.Fields{"event": e.Type, "template": job.Template})
		return messaging.Drop
	}

	fields := logrus.Fields{"event": e.Type, "to": job.To, "subject": job.Subject}
	if w.sender == nil {
		w.logger.WithFields(fields).Info("email skipped (sending disabled)")
		return messaging.Ack
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := w.sender.Send(c, job.To, job.Subject, job.Text, job.HTML); err != nil {
		helpers.LogWarn(w.logger, "send failed, requeueing", err, fields)
		return messaging.Requeue
	}
	w.logger.WithFields(fields).Info("email sent")
	return messaging.Ack
}
