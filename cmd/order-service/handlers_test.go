package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	ord "github.com/myproject/orders/internal/order"
)

//
// ---------- STUBS & FAKES ----------
//

// stubRepo implements ord.Repository in memory.
type stubRepo struct {
	orders map[int64]*ord.Order
	nextID int64
}

func newStubRepo() *stubRepo { return &stubRepo{orders: map[int64]*ord.Order{}} }

func (s *stubRepo) Save(ctx context.Context, o *ord.Order) (*ord.Order, error) {
	cp := *o
	now := time.Now()
	if cp.ID == 0 {
		s.nextID++
		cp.ID = s.nextID
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	cp.Items = append([]ord.Item(nil), o.Items...)
	s.orders[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *stubRepo) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	for _, o := range s.orders {
		if o.ExternalID == externalID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*ord.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, ord.ErrNotFound
	}
	return o, nil
}

func (s *stubRepo) ExistsByID(ctx context.Context, id int64) (bool, error) {
	_, ok := s.orders[id]
	return ok, nil
}

func (s *stubRepo) DeleteByID(ctx context.Context, id int64) error {
	delete(s.orders, id)
	return nil
}

func (s *stubRepo) List(ctx context.Context, q ord.ListQuery) ([]ord.Order, int64, error) {
	var out []ord.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

type stubPublisher struct {
	published []*ord.OrderResponse
}

func (p *stubPublisher) PublishOrder(ctx context.Context, o *ord.OrderResponse) error {
	p.published = append(p.published, o)
	return nil
}

func newTestRouter() (*gin.Engine, *stubRepo, *stubPublisher) {
	repo := newStubRepo()
	pub := &stubPublisher{}
	svc := ord.NewService(repo, pub)

	r := gin.New()
	r.POST("/orders", createOrderHandler(svc))
	r.GET("/orders", listOrdersHandler(svc))
	r.GET("/orders/:id", getOrderHandler(svc))
	r.DELETE("/orders/:id", deleteOrderHandler(svc))
	return r, repo, pub
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	r.ServeHTTP(w, req)
	return w
}

//
// ---------- TESTS ----------
//

func TestCreateOrder_HappyPath(t *testing.T) {
	t.Parallel()

	r, repo, pub := newTestRouter()

	body := `{"external_id":"EXT-1","items":[{"product_id":"P1","unit_price":"10.00","quantity":2}]}`
	w := doJSON(r, http.MethodPost, "/orders", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp ord.OrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != ord.StatusProcessed {
		t.Fatalf("status=%s, expected PROCESSED", resp.Status)
	}
	if !resp.Total.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("total=%s, expected 20.00", resp.Total)
	}
	if len(resp.Items) != 1 || !resp.Items[0].Subtotal.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("unexpected items: %+v", resp.Items)
	}
	if len(pub.published) != 1 {
		t.Fatalf("published=%d, expected exactly 1", len(pub.published))
	}
	if stored := repo.orders[resp.ID]; stored == nil || stored.Status != ord.StatusProcessed {
		t.Fatalf("order not persisted as PROCESSED")
	}
}

func TestCreateOrder_BlankExternalID(t *testing.T) {
	t.Parallel()

	r, _, pub := newTestRouter()
	w := doJSON(r, http.MethodPost, "/orders", `{"external_id":"   ","items":[]}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
	if len(pub.published) != 0 {
		t.Fatalf("validation failure must not publish")
	}
}

func TestCreateOrder_NullItems(t *testing.T) {
	t.Parallel()

	r, repo, _ := newTestRouter()
	w := doJSON(r, http.MethodPost, "/orders", `{"external_id":"EXT-1"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
	if len(repo.orders) != 0 {
		t.Fatalf("validation failure must not persist")
	}
}

func TestCreateOrder_EmptyItemsAllowed(t *testing.T) {
	t.Parallel()

	r, _, _ := newTestRouter()
	w := doJSON(r, http.MethodPost, "/orders", `{"external_id":"EXT-1","items":[]}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s (expected 201)", w.Code, w.Body.String())
	}
	var resp ord.OrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Total.IsZero() {
		t.Fatalf("total=%s, expected 0", resp.Total)
	}
}

func TestCreateOrder_Duplicate(t *testing.T) {
	t.Parallel()

	r, _, pub := newTestRouter()
	body := `{"external_id":"EXT-1","items":[{"product_id":"P1","unit_price":"10.00","quantity":2}]}`

	if w := doJSON(r, http.MethodPost, "/orders", body); w.Code != http.StatusCreated {
		t.Fatalf("first create: status=%d body=%s", w.Code, w.Body.String())
	}
	w := doJSON(r, http.MethodPost, "/orders", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d body=%s (expected 409)", w.Code, w.Body.String())
	}
	if len(pub.published) != 1 {
		t.Fatalf("duplicate must not publish again")
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	t.Parallel()

	r, _, _ := newTestRouter()
	w := doJSON(r, http.MethodGet, "/orders/99", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s (expected 404)", w.Code, w.Body.String())
	}
}

func TestGetOrder_BadID(t *testing.T) {
	t.Parallel()

	r, _, _ := newTestRouter()
	w := doJSON(r, http.MethodGet, "/orders/abc", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
}

func TestGetOrder_OK(t *testing.T) {
	t.Parallel()

	r, _, _ := newTestRouter()
	body := `{"external_id":"EXT-1","items":[{"product_id":"P1","unit_price":"5.00","quantity":1}]}`
	w := doJSON(r, http.MethodPost, "/orders", body)
	var created ord.OrderResponse
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = doJSON(r, http.MethodGet, "/orders/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s (expected 200)", w.Code, w.Body.String())
	}
	var got ord.OrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.ExternalID != "EXT-1" {
		t.Fatalf("external_id=%s", got.ExternalID)
	}
}

func TestDeleteOrder(t *testing.T) {
	t.Parallel()

	r, repo, _ := newTestRouter()
	doJSON(r, http.MethodPost, "/orders", `{"external_id":"EXT-1","items":[]}`)

	w := doJSON(r, http.MethodDelete, "/orders/1", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s (expected 204)", w.Code, w.Body.String())
	}
	if len(repo.orders) != 0 {
		t.Fatalf("order not deleted")
	}

	w = doJSON(r, http.MethodDelete, "/orders/1", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s (expected 404)", w.Code, w.Body.String())
	}
}

func TestListOrders_Envelope(t *testing.T) {
	t.Parallel()

	r, _, _ := newTestRouter()
	doJSON(r, http.MethodPost, "/orders", `{"external_id":"EXT-1","items":[]}`)
	doJSON(r, http.MethodPost, "/orders", `{"external_id":"EXT-2","items":[]}`)

	w := doJSON(r, http.MethodGet, "/orders", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s (expected 200)", w.Code, w.Body.String())
	}
	var page ord.OrderPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if page.TotalElements != 2 || page.Size != 10 || page.Page != 0 || page.TotalPages != 1 {
		t.Fatalf("unexpected envelope: %+v", page)
	}
	if len(page.Content) != 2 {
		t.Fatalf("content len=%d, expected 2", len(page.Content))
	}
}

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}
