package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	auction "car-auction/internal/auctionService"
	"car-auction/internal/repository"
	"car-auction/internal/server"

	"github.com/gin-gonic/gin"
)

// testAdminToken is the shared secret the test router accepts on
// privileged routes.
const testAdminToken = "integration-admin-token"

// SetupTestRouter initializes the router with an in-memory store for
// integration testing. The service is returned too so tests can drive
// the deadline sweep directly.
func SetupTestRouter() (*gin.Engine, *auction.AuctionService) {
	gin.SetMode(gin.TestMode)
	store := repository.NewMemoryStore()
	service := auction.NewAuctionService(store)
	router := server.SetupRouter(service, testAdminToken)
	return router, service
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url string, body []byte, admin bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set(server.AdminTokenHeader, testAdminToken)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any, admin bool) (map[string]any, *httptest.ResponseRecorder) {
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := ExecuteRequest(t, router, method, url, reqBody, admin)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		if err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// dataOf extracts the data envelope from a parsed response.
func dataOf(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", resp)
	}
	return data
}
