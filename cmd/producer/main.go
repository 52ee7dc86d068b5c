// Утилита для отправки сгенерированных заказов во входящий топик Kafka
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant_service/internal/config"
	"restaurant_service/internal/kafka"
)

func main() {
	count := flag.Int("n", 10, "количество заказов для отправки")
	interval := flag.Duration("interval", 500*time.Millisecond, "пауза между заказами")
	flag.Parse()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrdersTopic)
	defer producer.Close()

	sent := 0
	for i := 0; i < *count; i++ {
		order := kafka.GenerateTestOrder(i)
		if err := producer.SendOrder(ctx, order); err != nil {
			log.Printf("Ошибка отправки заказа %d: %v", i, err)
		} else {
			sent++
			log.Printf("Отправлен заказ %d: позиций %d, сумма %.2f", i, len(order.Items), order.TotalPrice)
		}

		select {
		case <-ctx.Done():
			log.Printf("Прервано, отправлено заказов: %d", sent)
			return
		case <-time.After(*interval):
		}
	}

	log.Printf("Отправлено заказов: %d из %d", sent, *count)
}
