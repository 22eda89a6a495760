package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/samahq/sama/config"
	"github.com/samahq/sama/internal/domain/event"
	"github.com/samahq/sama/internal/infrastructure/postgres"
	"github.com/samahq/sama/internal/infrastructure/rabbitmq"
	"github.com/samahq/sama/pkg/helpers"
	"github.com/samahq/sama/pkg/mailer"
)

// The notifier consumes domain events from the durable queue and sends the
// matching email notification. Unknown event names are acked and skipped so
// new producers never wedge the queue.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notifier", cfg.Env)

	if !cfg.MailSendEnabled {
		log.Println("MAIL_SEND_ENABLED=false; notifier disabled (no emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	users := postgres.NewUserRepository(pool)
	ngos := postgres.NewNgoRepository(pool)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if _, err := ch.QueueDeclare(cfg.RabbitMQEventQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}
	msgs, err := ch.Consume(cfg.RabbitMQEventQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)

	emailFor := func(ctx context.Context, userID string) (string, error) {
		u, err := users.GetByID(ctx, userID)
		if err != nil {
			return "", err
		}
		return u.Email, nil
	}

	handle := func(ctx context.Context, env rabbitmq.Envelope) (to, subject, text string, err error) {
		switch env.Name {
		case event.UserCreated{}.Name():
			var e event.UserCreated
			if err = json.Unmarshal(env.Payload, &e); err != nil {
				return
			}
			subject, text = mailer.WelcomeEmail(e.Email)
			to = e.Email
		case event.FundsAdded{}.Name():
			var e event.FundsAdded
			if err = json.Unmarshal(env.Payload, &e); err != nil {
				return
			}
			if to, err = emailFor(ctx, e.UserID); err != nil {
				return
			}
			subject, text = mailer.PaymentReceipt(to, e.Value)
		case event.DonationMade{}.Name():
			var e event.DonationMade
			if err = json.Unmarshal(env.Payload, &e); err != nil {
				return
			}
			if to, err = emailFor(ctx, e.UserID); err != nil {
				return
			}
			ngoName := "the NGO"
			if ngo, nerr := ngos.GetByID(ctx, e.NgoID); nerr == nil {
				ngoName = ngo.Name
			}
			subject, text = mailer.DonationReceipt(to, ngoName, e.Value)
		}
		return
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var env rabbitmq.Envelope
			if err := json.Unmarshal(msg.Body, &env); err != nil {
				logger.WithError(err).Warn("bad message")
				_ = msg.Nack(false, false)
				continue
			}

			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			to, subject, text, err := handle(c, env)
			if err != nil {
				cancel()
				logger.WithError(err).WithField("event", env.Name).Warn("handle failed")
				_ = msg.Nack(false, true)
				continue
			}
			if to == "" {
				cancel()
				logger.WithField("event", env.Name).Debug("no notification for event")
				_ = msg.Ack(false)
				continue
			}
			if err := mg.Send(c, to, subject, text); err != nil {
				cancel()
				logger.WithError(err).WithField("event", env.Name).Warn("send failed")
				_ = msg.Nack(false, true)
				continue
			}
			cancel()
			_ = msg.Ack(false)
		}
		close(done)
	}()

	logger.Infof("notifier listening on queue=%s", cfg.RabbitMQEventQueue)
	<-stop
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
