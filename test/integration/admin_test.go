//go:build integration

package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/arcadia/loyalty/test/integration/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Authorization Tests ────────────────────────────────────────────────────

func TestAdminRoutes_RejectPlayers(t *testing.T) {
	env := testutil.NewTestEnv(t)
	playerToken, _ := env.RegisterPlayer("justaplayer@test.com", "securepass123")

	resp := env.AuthGET("/admin/users", playerToken)
	testutil.AssertStatus(t, resp, http.StatusForbidden)
}

func TestAdminRoutes_RejectAnonymous(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.GET("/admin/users")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ─── Top-Up Tests ───────────────────────────────────────────────────────────

func TestTopUp_Success(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken, adminID := env.CreateAdmin("cashier@test.com")
	_, userID := env.RegisterPlayer("topupme@test.com", "securepass123")

	resp := env.AuthPOST("/admin/topup", map[string]interface{}{
		"user_id":     userID.String(),
		"coins":       20,
		"amount_paid": 150,
		"reason":      "counter purchase",
	}, adminToken)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var result struct {
		ComputedPoints int64 `json:"computed_points"`
		Transaction    struct {
			Type             string `json:"type"`
			Amount           *int64 `json:"amount"`
			CoinsAdded       int64  `json:"coins_added"`
			PointsEarned     int64  `json:"points_earned"`
			CoinBalanceAfter int64  `json:"coin_balance_after"`
		} `json:"transaction"`
		User struct {
			CoinBalance  int64 `json:"coin_balance"`
			PointBalance int64 `json:"point_balance"`
		} `json:"user"`
	}
	testutil.DecodeJSON(t, resp, &result)

	// 150 paid at 50 per point grants 3 points.
	assert.Equal(t, int64(3), result.ComputedPoints)
	assert.Equal(t, "purchase", result.Transaction.Type)
	require.NotNil(t, result.Transaction.Amount)
	assert.Equal(t, int64(150), *result.Transaction.Amount)
	assert.Equal(t, int64(20), result.Transaction.CoinsAdded)
	assert.Equal(t, int64(3), result.Transaction.PointsEarned)
	assert.Equal(t, int64(20), result.Transaction.CoinBalanceAfter)
	assert.Equal(t, int64(20), result.User.CoinBalance)
	assert.Equal(t, int64(3), result.User.PointBalance)

	testutil.AssertBalances(t, env, userID, 20, 3)

	n := testutil.CountRows(t, env,
		"SELECT COUNT(*) FROM admin_actions WHERE admin_id = $1 AND action = 'topup' AND target_user_id = $2",
		adminID, userID)
	assert.Equal(t, 1, n)
}

func TestTopUp_BelowPointThreshold(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken, _ := env.CreateAdmin("cashier2@test.com")
	_, userID := env.RegisterPlayer("smallspender@test.com", "securepass123")

	resp := env.AuthPOST("/admin/topup", map[string]interface{}{
		"user_id": userID.String(), "coins": 5, "amount_paid": 49,
	}, adminToken)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var result struct {
		ComputedPoints int64 `json:"computed_points"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, int64(0), result.ComputedPoints)
	testutil.AssertBalances(t, env, userID, 5, 0)
}

func TestTopUp_IdempotencyKeyBlocksDoubleSubmit(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken, _ := env.CreateAdmin("doubletap@test.com")
	_, userID := env.RegisterPlayer("onceonly@test.com", "securepass123")

	body := map[string]interface{}{
		"user_id": userID.String(), "coins": 10, "amount_paid": 100,
	}
	send := func() *http.Response {
		return env.AuthPOSTWithHeaders("/admin/topup", body, adminToken,
			map[string]string{"Idempotency-Key": "counter-7-receipt-42"})
	}

	resp := send()
	testutil.AssertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = send()
	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, "DUPLICATE_REQUEST")

	// Only the first submission credited the user.
	testutil.AssertBalances(t, env, userID, 10, 2)
}

func TestTopUp_Validation(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken, _ := env.CreateAdmin("cashier3@test.com")
	_, userID := env.RegisterPlayer("novalue@test.com", "securepass123")

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"negative coins", map[string]interface{}{"user_id": userID.String(), "coins": -10, "amount_paid": 100}},
		{"negative amount", map[string]interface{}{"user_id": userID.String(), "coins": 10, "amount_paid": -50}},
		{"both zero", map[string]interface{}{"user_id": userID.String(), "coins": 0, "amount_paid": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.AuthPOST("/admin/topup", tt.body, adminToken)
			testutil.AssertStatus(t, resp, http.StatusBadRequest)
			testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
		})
	}

	t.Run("unknown user", func(t *testing.T) {
		resp := env.AuthPOST("/admin/topup", map[string]interface{}{
			"user_id": uuid.New().String(), "coins": 10, "amount_paid": 100,
		}, adminToken)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

// ─── User Directory Tests ───────────────────────────────────────────────────

func TestAdminUsers_List(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken, _ := env.CreateAdmin("directory@test.com")
	env.RegisterPlayer("listme1@test.com", "securepass123")
	env.RegisterPlayer("listme2@test.com", "securepass123")

	resp := env.AuthGET("/admin/users", adminToken)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var users []map[string]interface{}
	testutil.DecodeJSON(t, resp, &users)
	assert.Len(t, users, 3) // two players plus the admin itself
	for _, u := range users {
		_, leaked := u["password_hash"]
		assert.False(t, leaked, "password hash must never leave the server")
	}
}

// ─── Analytics Tests ────────────────────────────────────────────────────────

func TestAdminAnalytics(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken, _ := env.CreateAdmin("analyst@test.com")
	_, u1 := env.RegisterPlayer("spender1@test.com", "securepass123")
	_, u2 := env.RegisterPlayer("spender2@test.com", "securepass123")

	for _, tc := range []struct {
		userID uuid.UUID
		amount int64
	}{{u1, 100}, {u2, 300}} {
		resp := env.AuthPOST("/admin/topup", map[string]interface{}{
			"user_id": tc.userID.String(), "coins": 10, "amount_paid": tc.amount,
		}, adminToken)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := env.AuthGET("/admin/analytics", adminToken)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var report struct {
		Sales struct {
			TotalRevenue     int64   `json:"total_revenue"`
			TransactionCount int     `json:"transaction_count"`
			MeanAmount       float64 `json:"mean_amount"`
		} `json:"sales"`
		Users struct {
			TotalUsers  int `json:"total_users"`
			ActiveUsers int `json:"active_users"`
		} `json:"users"`
	}
	testutil.DecodeJSON(t, resp, &report)
	assert.Equal(t, int64(400), report.Sales.TotalRevenue)
	assert.Equal(t, 2, report.Sales.TransactionCount)
	assert.InDelta(t, 200.0, report.Sales.MeanAmount, 0.01)
	assert.Equal(t, 3, report.Users.TotalUsers)
	assert.Equal(t, 2, report.Users.ActiveUsers) // only the topped-up players hold coins
}

// ─── Transaction Report Tests ───────────────────────────────────────────────

func TestAdminTransactions_Filters(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken, _ := env.CreateAdmin("auditor@test.com")
	token, u1 := env.RegisterPlayer("filtered1@test.com", "securepass123")
	_, u2 := env.RegisterPlayer("filtered2@test.com", "securepass123")

	for _, id := range []uuid.UUID{u1, u2} {
		resp := env.AuthPOST("/admin/topup", map[string]interface{}{
			"user_id": id.String(), "coins": 10, "amount_paid": 100,
		}, adminToken)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	promoID := env.SeedPromotion("bonus_points", 50, nil)
	resp := env.AuthPOST("/promotions/redeem/"+promoID.String(), nil, token)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var txs []struct {
		UserID uuid.UUID `json:"user_id"`
		Type   string    `json:"type"`
	}

	resp = env.AuthGET("/admin/transactions", adminToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	testutil.DecodeJSON(t, resp, &txs)
	assert.Len(t, txs, 3)

	resp = env.AuthGET("/admin/transactions?type=purchase", adminToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	testutil.DecodeJSON(t, resp, &txs)
	require.Len(t, txs, 2)
	for _, tx := range txs {
		assert.Equal(t, "purchase", tx.Type)
	}

	resp = env.AuthGET("/admin/transactions?user_id="+u1.String(), adminToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	testutil.DecodeJSON(t, resp, &txs)
	require.Len(t, txs, 2)
	for _, tx := range txs {
		assert.Equal(t, u1, tx.UserID)
	}

	future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	resp = env.AuthGET("/admin/transactions?from="+future, adminToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	testutil.DecodeJSON(t, resp, &txs)
	assert.Empty(t, txs)
}

func TestAdminTransactions_BadFilter(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken, _ := env.CreateAdmin("auditor2@test.com")

	tests := []struct {
		name  string
		query string
	}{
		{"bad user id", "?user_id=not-a-uuid"},
		{"bad timestamp", "?from=yesterday"},
		{"unknown type", "?type=refund"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.AuthGET("/admin/transactions"+tt.query, adminToken)
			testutil.AssertStatus(t, resp, http.StatusBadRequest)
			testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
		})
	}
}

// ─── Audit Trail Tests ──────────────────────────────────────────────────────

func TestAdminActions_Listed(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken, adminID := env.CreateAdmin("trail@test.com")
	_, userID := env.RegisterPlayer("trailtarget@test.com", "securepass123")

	resp := env.AuthPOST("/admin/topup", map[string]interface{}{
		"user_id": userID.String(), "coins": 10, "amount_paid": 100,
	}, adminToken)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.AuthGET("/admin/actions", adminToken)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var actions []struct {
		AdminID      uuid.UUID  `json:"admin_id"`
		TargetUserID *uuid.UUID `json:"target_user_id"`
		Action       string     `json:"action"`
	}
	testutil.DecodeJSON(t, resp, &actions)
	require.Len(t, actions, 1)
	assert.Equal(t, adminID, actions[0].AdminID)
	require.NotNil(t, actions[0].TargetUserID)
	assert.Equal(t, userID, *actions[0].TargetUserID)
	assert.Equal(t, "topup", actions[0].Action)
}
