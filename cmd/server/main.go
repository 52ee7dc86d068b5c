// Основной пакет сервера ресторана: очередь, меню и заказы
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant_service/internal/cache"
	"restaurant_service/internal/config"
	"restaurant_service/internal/database"
	"restaurant_service/internal/handler"
	"restaurant_service/internal/interfaces"
	"restaurant_service/internal/kafka"
	"restaurant_service/internal/menu"
	"restaurant_service/internal/queue"
	"restaurant_service/internal/service"
)

// Период очистки истекших заказов в кэше
const cacheCleanupInterval = time.Minute

func main() {
	// Создаем основной контекст
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Загружаем конфигурацию из окружения
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Подключение к базе данных
	log.Printf("Подключение к БД (%s)...", cfg.DBDriver)
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		log.Fatalf("Ошибка подключения к БД: %v", err)
	}

	// Инициализация базы данных (создание таблиц)
	if err := db.Init(ctx); err != nil {
		log.Fatalf("Ошибка инициализации БД: %v", err)
	}

	// Кэш заказов с фоновой очисткой
	orderCache := cache.New(cfg.CacheTTL)
	go orderCache.Run(ctx, cacheCleanupInterval)

	// Публикация событий о заказах, если Kafka включена
	var publisher interfaces.Publisher
	var eventsProducer *kafka.Producer
	if cfg.KafkaEnabled {
		eventsProducer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaEventsTopic)
		publisher = eventsProducer
	}

	// Создание сервиса для работы с заказами
	svc := service.New(db, orderCache, publisher)
	defer svc.Close()

	// Прогрев кэша перед запуском обработчиков
	if err := svc.WarmUpCache(ctx, cfg.CacheWarmUpLimit); err != nil {
		log.Printf("Ошибка прогрева кэша: %v", err)
	}

	// Kafka consumer для входящих заказов
	consumerDone := make(chan struct{})
	if cfg.KafkaEnabled {
		dlq := kafka.NewDLQProducer(cfg.KafkaBrokers, cfg.KafkaDLQTopic)
		defer dlq.Close()
		defer eventsProducer.Close()

		kafkaConsumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaOrdersTopic, cfg.KafkaGroupID, dlq)
		defer kafkaConsumer.Close()

		// Запуск Kafka consumer в отдельной горутине
		go func() {
			defer close(consumerDone)
			log.Printf("Начало работы Kafka consumer для: %s", cfg.KafkaOrdersTopic)
			if err := kafkaConsumer.Consume(ctx, svc.ProcessOrder); err != nil {
				log.Printf("Ошибка работы в Kafka consumer: %v", err)
			}
		}()
	} else {
		close(consumerDone)
		log.Println("Kafka отключена, заказы принимаются только по HTTP")
	}

	// Создание HTTP обработчиков
	h := handler.New(queue.New(), menu.NewFileReader(cfg.MenuPath), svc)
	log.Printf("Меню читается из: %s", cfg.MenuPath)

	// Создание HTTP сервера
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Запуск HTTP сервера в отдельной горутине
	go func() {
		log.Printf("Сервер запущен на %s", cfg.ServerAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Ошибка сервера: %v", err)
		}
	}()

	// Ожидание сигнала для graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan

	log.Println("Остановка сервера")

	// Graceful shutdown с таймаутом 30 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Ошибка остановки сервера: %v", err)
	}
	cancel()

	// Дожидаемся завершения consumer
	select {
	case <-consumerDone:
	case <-time.After(10 * time.Second):
		log.Println("Таймаут ожидания остановки consumer")
	}
	log.Println("Сервер остановлен успешно")
}

// openDatabase открывает хранилище заказов по выбранному драйверу
func openDatabase(ctx context.Context, cfg *config.Config) (interfaces.Database, error) {
	if cfg.DBDriver == config.DriverSQLite {
		store, err := database.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := database.NewPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	return store, nil
}
