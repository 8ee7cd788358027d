package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	json "github.com/goccy/go-json"
	"github.com/mselser95/hl-holdtime/pkg/types"
)

// MockInfoAPI is a mock HTTP server that simulates the Hyperliquid info endpoint.
type MockInfoAPI struct {
	*httptest.Server

	mu       sync.RWMutex
	fills    map[string][]map[string]any // account -> raw fill records
	statuses []int                       // status codes to return before serving fills

	Requests atomic.Int64
	LastBody atomic.Value // map[string]any
}

// NewMockInfoAPI creates a new mock info API server.
func NewMockInfoAPI() *MockInfoAPI {
	mock := &MockInfoAPI{
		fills: make(map[string][]map[string]any),
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.Requests.Add(1)

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		mock.LastBody.Store(body)

		if status, ok := mock.nextStatus(); ok {
			http.Error(w, http.StatusText(status), status)
			return
		}

		if body["type"] != "userFills" {
			http.Error(w, "unknown request type", http.StatusUnprocessableEntity)
			return
		}

		user, _ := body["user"].(string)

		mock.mu.RLock()
		records, ok := mock.fills[user]
		mock.mu.RUnlock()
		if !ok {
			records = []map[string]any{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(records)
	})

	mock.Server = httptest.NewServer(handler)
	return mock
}

// SetFills sets the raw fill records served for account.
func (m *MockInfoAPI) SetFills(account string, records ...map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fills[account] = records
}

// FailNext makes the next len(statuses) requests fail with the given status codes.
func (m *MockInfoAPI) FailNext(statuses ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, statuses...)
}

func (m *MockInfoAPI) nextStatus() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.statuses) == 0 {
		return 0, false
	}
	status := m.statuses[0]
	m.statuses = m.statuses[1:]
	return status, true
}

// FakeFillSource is an in-memory fill source keyed by account.
type FakeFillSource struct {
	mu     sync.Mutex
	Fills  map[string][]types.Fill
	Errors map[string]error
	Calls  []string
}

// NewFakeFillSource creates an empty fake fill source.
func NewFakeFillSource() *FakeFillSource {
	return &FakeFillSource{
		Fills:  make(map[string][]types.Fill),
		Errors: make(map[string]error),
	}
}

// FetchFills returns the configured error or fills for account.
func (f *FakeFillSource) FetchFills(ctx context.Context, account string) ([]types.Fill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, account)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.Errors[account]; ok {
		return nil, err
	}
	return f.Fills[account], nil
}

// CallCount returns how many times FetchFills was called.
func (f *FakeFillSource) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}
