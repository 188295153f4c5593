package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TobiSchelling/cakes/pkg/cakes"
	"github.com/TobiSchelling/cakes/pkg/criteria"
	"github.com/TobiSchelling/cakes/pkg/dataset"
	"github.com/TobiSchelling/cakes/pkg/metric"
)

func newTestFacade(t *testing.T) *cakes.Facade[[]float64, float64] {
	t.Helper()
	rows := [][]float64{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
	m, err := metric.VectorMetric("euclidean", false)
	if err != nil {
		t.Fatalf("metric setup: %v", err)
	}
	d := dataset.NewVectorDataset(rows, m, false)
	c := criteria.New[[]float64, float64](false)
	f, err := cakes.New[[]float64, float64](d, 1, c, false)
	if err != nil {
		t.Fatalf("facade setup: %v", err)
	}
	return f
}

func TestStatsRoute(t *testing.T) {
	srv := New(newTestFacade(t))

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Cardinality != 4 {
		t.Errorf("Cardinality = %d, want 4", resp.Cardinality)
	}
}

func TestRnnRouteSingleQuery(t *testing.T) {
	srv := New(newTestFacade(t))

	body, _ := json.Marshal(rnnRequest{Queries: [][]float64{{0, 1}}, Radius: 1.5})
	req := httptest.NewRequest(http.MethodPost, "/rnn", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var hits []hitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &hits); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}
}

func TestKnnRouteBatch(t *testing.T) {
	srv := New(newTestFacade(t))

	body, _ := json.Marshal(knnRequest{Queries: [][]float64{{0, 0}, {3, 3}}, K: 2})
	req := httptest.NewRequest(http.MethodPost, "/knn", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var batches [][]hitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &batches); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("len(batches) = %d, want 2", len(batches))
	}
	for _, hits := range batches {
		if len(hits) != 2 {
			t.Errorf("len(hits) = %d, want 2", len(hits))
		}
	}
}

func TestRnnRouteRejectsEmptyQueries(t *testing.T) {
	srv := New(newTestFacade(t))

	body, _ := json.Marshal(rnnRequest{Queries: nil, Radius: 1})
	req := httptest.NewRequest(http.MethodPost, "/rnn", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
