package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"restaurant_service/internal/menu"
	"restaurant_service/internal/mocks"
	"restaurant_service/internal/models"
	"restaurant_service/internal/queue"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	routes  http.Handler
	service *mocks.MockOrderService
}

func newTestServer(t *testing.T, menuPath string) *testServer {
	t.Helper()

	ctrl := gomock.NewController(t)
	service := mocks.NewMockOrderService(ctrl)
	h := New(queue.New(), menu.NewFileReader(menuPath), service)

	return &testServer{routes: h.Routes(), service: service}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.routes.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "тело ответа должно быть JSON: %s", rec.Body.String())
	return body
}

func TestQueueFlow(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(http.MethodPost, "/queue", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "已將 1 號加入隊列", decodeBody(t, rec)["message"])

	rec = s.do(http.MethodPost, "/queue", "")
	assert.Equal(t, "已將 2 號加入隊列", decodeBody(t, rec)["message"])

	rec = s.do(http.MethodGet, "/queue", "")
	assert.JSONEq(t, `{"queue":[1,2]}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/queue/length", "")
	assert.JSONEq(t, `{"length":2}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/dequeue", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "請 1 號前往櫃檯", decodeBody(t, rec)["message"])

	rec = s.do(http.MethodGet, "/current", "")
	assert.JSONEq(t, `{"current_number":1}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/queue", "")
	assert.JSONEq(t, `{"queue":[2]}`, rec.Body.String())
}

func TestQueueEmptyAndReset(t *testing.T) {
	s := newTestServer(t, "")

	t.Run("DequeueEmpty", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/dequeue", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "目前沒有顧客在隊列中", decodeBody(t, rec)["detail"])
	})

	t.Run("CurrentBeforeAnyCall", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/current", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "目前沒有叫號號碼", decodeBody(t, rec)["detail"])
	})

	t.Run("ResetRestartsNumbering", func(t *testing.T) {
		s.do(http.MethodPost, "/queue", "")
		s.do(http.MethodPost, "/queue", "")
		s.do(http.MethodPost, "/dequeue", "")

		rec := s.do(http.MethodPost, "/reset", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "已重置", decodeBody(t, rec)["message"])

		assert.JSONEq(t, `{"queue":[]}`, s.do(http.MethodGet, "/queue", "").Body.String())
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/current", "").Code)

		rec = s.do(http.MethodPost, "/queue", "")
		assert.Equal(t, "已將 1 號加入隊列", decodeBody(t, rec)["message"])
	})

	t.Run("WrongMethod", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/dequeue", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestGetMenu(t *testing.T) {
	dir := t.TempDir()

	t.Run("Verbatim", func(t *testing.T) {
		path := filepath.Join(dir, "menu.json")
		content := `{"items":[{"id":1,"name":"Burger","price":5.5}],"extra":{"nested":true}}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		rec := newTestServer(t, path).do(http.MethodGet, "/get-menu", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, content, rec.Body.String(), "меню должно отдаваться без изменений")
	})

	t.Run("Missing", func(t *testing.T) {
		rec := newTestServer(t, filepath.Join(dir, "absent.json")).do(http.MethodGet, "/get-menu", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Menu file not found", decodeBody(t, rec)["detail"])
	})

	t.Run("Malformed", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"items": [`), 0o644))

		rec := newTestServer(t, path).do(http.MethodGet, "/get-menu", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotEmpty(t, decodeBody(t, rec)["detail"])
	})
}

func TestSubmitOrder(t *testing.T) {
	const body = `{"items":[{"id":1,"quantity":2,"price":3.5}],"totalPrice":7.0,"orderTime":"2024-01-01T00:00:00"}`

	t.Run("Success", func(t *testing.T) {
		s := newTestServer(t, "")
		s.service.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, order *models.Order) (int64, error) {
				assert.Equal(t, []models.OrderItem{{ItemID: 1, Quantity: 2, Price: 3.5}}, order.Items)
				assert.Equal(t, 7.0, order.TotalPrice)
				assert.Equal(t, "2024-01-01T00:00:00", order.OrderTime)
				return 11, nil
			})

		rec := s.do(http.MethodPost, "/submit-order/", body)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Order submitted successfully","order_id":11}`, rec.Body.String())
	})

	t.Run("WithoutTrailingSlash", func(t *testing.T) {
		s := newTestServer(t, "")
		s.service.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).Return(int64(12), nil)

		rec := s.do(http.MethodPost, "/submit-order", body)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("NoBusinessValidation", func(t *testing.T) {
		s := newTestServer(t, "")
		s.service.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).Return(int64(13), nil)

		rec := s.do(http.MethodPost, "/submit-order/", `{"items":[{"id":9,"quantity":-3,"price":-1}],"totalPrice":0,"orderTime":"not a time"}`)
		assert.Equal(t, http.StatusOK, rec.Code, "количество, цены и время не проверяются")
	})

	t.Run("PersistenceFailure", func(t *testing.T) {
		s := newTestServer(t, "")
		s.service.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).
			Return(int64(0), models.Persistence(errors.New("connection refused")))

		rec := s.do(http.MethodPost, "/submit-order/", body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "connection refused", decodeBody(t, rec)["detail"])
	})

	t.Run("UndecodableBody", func(t *testing.T) {
		s := newTestServer(t, "")

		rec := s.do(http.MethodPost, "/submit-order/", `{"items": "many"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.NotEmpty(t, decodeBody(t, rec)["detail"])
	})

	t.Run("MissingItems", func(t *testing.T) {
		s := newTestServer(t, "")

		rec := s.do(http.MethodPost, "/submit-order/", `{"totalPrice":1,"orderTime":"x"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestGetOrder(t *testing.T) {
	s := newTestServer(t, "")

	order := &models.Order{
		ID:         5,
		Items:      []models.OrderItem{{ItemID: 1, Quantity: 1, Price: 2}},
		TotalPrice: 2,
		OrderTime:  "t",
	}

	t.Run("Found", func(t *testing.T) {
		s.service.EXPECT().GetOrder(gomock.Any(), int64(5)).Return(order, nil)

		rec := s.do(http.MethodGet, "/order/5", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"order_id":5,"items":[{"id":1,"quantity":1,"price":2}],"totalPrice":2,"orderTime":"t"}`, rec.Body.String())
	})

	t.Run("NotFound", func(t *testing.T) {
		s.service.EXPECT().GetOrder(gomock.Any(), int64(6)).Return(nil, models.NotFound("Order not found"))

		rec := s.do(http.MethodGet, "/order/6", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Order not found", decodeBody(t, rec)["detail"])
	})

	t.Run("NonNumericID", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/order/abc", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Overflow", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/order/99999999999999999999", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealthAndStats(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])

	s.service.EXPECT().GetStats().Return(map[string]interface{}{"cache_size": 3})
	s.do(http.MethodPost, "/queue", "")

	rec = s.do(http.MethodGet, "/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody(t, rec)
	assert.Equal(t, float64(3), stats["cache_size"])
	assert.Equal(t, float64(1), stats["queue_length"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, "")
	s.do(http.MethodPost, "/queue", "")

	rec := s.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "queue_numbers_issued_total")
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, "")

	t.Run("Preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/submit-order/", nil)
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		rec := httptest.NewRecorder()
		s.routes.ServeHTTP(rec, req)

		assert.Less(t, rec.Code, 300)
		assert.Equal(t, "http://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("SimpleRequest", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/queue/length", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		s.routes.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, "")

	t.Run("Generated", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/health", "")
		assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	})

	t.Run("Propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		s.routes.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
	})
}
