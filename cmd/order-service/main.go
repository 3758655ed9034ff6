package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/myproject/orders/internal/config"
	"github.com/myproject/orders/internal/httpx"
	"github.com/myproject/orders/internal/order"
	"github.com/myproject/orders/internal/queue"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	conn, err := dialAMQP(cfg.AMQPURL)
	if err != nil {
		log.Fatalf("connect rabbitmq: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("open channel: %v", err)
	}
	defer ch.Close()

	if err := queue.DeclareTopology(ch, cfg); err != nil {
		log.Fatalf("declare topology: %v", err)
	}

	repo := order.NewPGRepo(pool)
	pub := queue.NewPublisher(ch, cfg.OrdersExchange, cfg.OutboundRoutingKey)
	svc := order.NewService(repo, pub)

	consumer := queue.NewConsumer(ch, svc, cfg.InboundQueue)
	go func() {
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("[amqp] consumer stopped: %v", err)
		}
	}()

	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Logger(), gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/orders", createOrderHandler(svc))
	r.GET("/orders", listOrdersHandler(svc))
	r.GET("/orders/:id", getOrderHandler(svc))
	r.DELETE("/orders/:id", deleteOrderHandler(svc))

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Printf("order-service listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

// dialAMQP retries for a while because the broker tends to come up after us
// in compose environments.
func dialAMQP(url string) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	for i := 0; i < 10; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		log.Printf("[amqp] connect failed, retrying in 2s... (%d/10)", i+1)
		time.Sleep(2 * time.Second)
	}
	return nil, err
}
