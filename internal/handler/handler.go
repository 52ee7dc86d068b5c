// Package handler содержит HTTP обработчики для API
package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"restaurant_service/internal/interfaces"
	"restaurant_service/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const msgOrderSubmitted = "Order submitted successfully"

// Handler содержит HTTP обработчики для API
type Handler struct {
	queue   interfaces.QueueService // Очередь "взять номер"
	menu    interfaces.MenuReader   // Источник документа меню
	service interfaces.OrderService // Сервис для работы с заказами
}

// New создает новый экземпляр HTTP обработчика
func New(queue interfaces.QueueService, menu interfaces.MenuReader, service interfaces.OrderService) *Handler {
	return &Handler{queue: queue, menu: menu, service: service}
}

// Routes возвращает маршрутизатор со всеми эндпоинтами, обернутый в CORS и журнал запросов
func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()

	// Очередь
	r.HandleFunc("/queue", h.Enqueue).Methods(http.MethodPost)
	r.HandleFunc("/queue", h.QueueSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/dequeue", h.Dequeue).Methods(http.MethodPost)
	r.HandleFunc("/current", h.Current).Methods(http.MethodGet)
	r.HandleFunc("/queue/length", h.QueueLength).Methods(http.MethodGet)
	r.HandleFunc("/reset", h.Reset).Methods(http.MethodPost)

	// Меню и заказы
	r.HandleFunc("/get-menu", h.GetMenu).Methods(http.MethodGet)
	r.HandleFunc("/submit-order/", h.SubmitOrder).Methods(http.MethodPost)
	r.HandleFunc("/submit-order", h.SubmitOrder).Methods(http.MethodPost)
	r.HandleFunc("/order/{id:[0-9]+}", h.GetOrder).Methods(http.MethodGet)

	// Служебные
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return withCORS(withRequestID(r))
}

// Enqueue выдает клиенту следующий номер
func (h *Handler) Enqueue(w http.ResponseWriter, r *http.Request) {
	number := h.queue.Enqueue()
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("已將 %d 號加入隊列", number),
	})
}

// Dequeue вызывает следующий номер к кассе
func (h *Handler) Dequeue(w http.ResponseWriter, r *http.Request) {
	number, err := h.queue.Dequeue()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("請 %d 號前往櫃檯", number),
	})
}

// Current возвращает последний вызванный номер
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	number, err := h.queue.Current()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"current_number": number})
}

// QueueLength возвращает количество ожидающих номеров
func (h *Handler) QueueLength(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"length": h.queue.Len()})
}

// QueueSnapshot возвращает ожидающие номера от головы к хвосту
func (h *Handler) QueueSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]int{"queue": h.queue.Snapshot()})
}

// Reset очищает очередь и сбрасывает счетчик
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.queue.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"message": "已重置"})
}

// GetMenu отдает документ меню без изменений
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.menu.Read()
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(menu); err != nil {
		log.Printf("Ошибка отправки меню: %v", err)
	}
}

// SubmitOrder принимает заказ и сохраняет его одной транзакцией
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var order models.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("Некорректное тело запроса: %v", err))
		return
	}
	if err := order.Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := h.service.SubmitOrder(r.Context(), &order)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  msgOrderSubmitted,
		"order_id": id,
	})
}

// GetOrder возвращает сохраненный заказ по идентификатору
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Некорректный идентификатор заказа")
		return
	}

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// HealthCheck обрабатывает запрос проверки состояния сервиса
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",        // Статус сервиса
		"timestamp": time.Now().UTC(), // Текущее время
	})
}

// Stats обрабатывает запрос для получения статистики сервиса
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.service.GetStats()
	stats["queue_length"] = h.queue.Len()
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Ошибка кодирования ответа: %v", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeError переводит категорию ошибки в код ответа
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := models.KindOf(err)
	status := http.StatusInternalServerError
	if kind == models.KindNotFound {
		status = http.StatusNotFound
	} else {
		log.Printf("Ошибка обработки запроса %s (%s): %v", RequestID(r.Context()), kind, err)
	}
	writeDetail(w, status, err.Error())
}
