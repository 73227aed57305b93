//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body carries the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// AssertBalances queries the users table and asserts coin and point balances.
func AssertBalances(t *testing.T, env *TestEnv, userID uuid.UUID, coins, points int64) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var gotCoins, gotPoints int64
	err := env.Pool.QueryRow(ctx,
		"SELECT coin_balance, point_balance FROM users WHERE id = $1", userID).
		Scan(&gotCoins, &gotPoints)
	if err != nil {
		t.Fatalf("AssertBalances: query: %v", err)
	}
	if gotCoins != coins {
		t.Errorf("coin balance: expected %d, got %d", coins, gotCoins)
	}
	if gotPoints != points {
		t.Errorf("point balance: expected %d, got %d", points, gotPoints)
	}
}

// CountRows returns the row count of a table matching a single-arg WHERE clause.
func CountRows(t *testing.T, env *TestEnv, query string, args ...interface{}) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var n int
	if err := env.Pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		t.Fatalf("CountRows: %v", err)
	}
	return n
}
