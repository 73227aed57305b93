//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/arcadia/loyalty/test/integration/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Balance Tests ──────────────────────────────────────────────────────────

func TestUserBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("balance@test.com", "securepass123")
	env.SetBalances(userID, 120, 45)

	resp := env.AuthGET("/user/balance", token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var user struct {
		ID           uuid.UUID `json:"id"`
		CoinBalance  int64     `json:"coin_balance"`
		PointBalance int64     `json:"point_balance"`
	}
	testutil.DecodeJSON(t, resp, &user)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, int64(120), user.CoinBalance)
	assert.Equal(t, int64(45), user.PointBalance)
}

func TestUserBalance_RequiresAuth(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.GET("/user/balance")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ─── History Tests ──────────────────────────────────────────────────────────

type txPage struct {
	Transactions []struct {
		ID          uuid.UUID `json:"id"`
		Type        string    `json:"type"`
		Description string    `json:"description"`
	} `json:"transactions"`
	NextCursor *string `json:"next_cursor"`
}

func TestUserTransactions_Pagination(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken, _ := env.CreateAdmin("histadmin@test.com")
	token, userID := env.RegisterPlayer("history@test.com", "securepass123")

	// Seed 5 ledger entries through the top-up path.
	for i := 0; i < 5; i++ {
		resp := env.AuthPOST("/admin/topup", map[string]interface{}{
			"user_id":     userID.String(),
			"coins":       10,
			"amount_paid": 50,
			"reason":      fmt.Sprintf("entry %d", i),
		}, adminToken)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var first txPage
	resp := env.AuthGET("/user/transactions?limit=2", token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	testutil.DecodeJSON(t, resp, &first)
	require.Len(t, first.Transactions, 2)
	require.NotNil(t, first.NextCursor)
	assert.Equal(t, "entry 4", first.Transactions[0].Description) // newest first

	var second txPage
	resp = env.AuthGET("/user/transactions?limit=2&cursor="+*first.NextCursor, token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	testutil.DecodeJSON(t, resp, &second)
	require.Len(t, second.Transactions, 2)
	require.NotNil(t, second.NextCursor)

	var third txPage
	resp = env.AuthGET("/user/transactions?limit=2&cursor="+*second.NextCursor, token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	testutil.DecodeJSON(t, resp, &third)
	require.Len(t, third.Transactions, 1)
	assert.Nil(t, third.NextCursor)

	// The three pages tile the history with no overlap.
	seen := map[uuid.UUID]bool{}
	for _, page := range []txPage{first, second, third} {
		for _, tx := range page.Transactions {
			assert.False(t, seen[tx.ID], "transaction %s appeared on two pages", tx.ID)
			seen[tx.ID] = true
		}
	}
	assert.Len(t, seen, 5)
}

func TestUserTransactions_Empty(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("notx@test.com", "securepass123")

	var page txPage
	resp := env.AuthGET("/user/transactions", token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	testutil.DecodeJSON(t, resp, &page)
	assert.Empty(t, page.Transactions)
	assert.Nil(t, page.NextCursor)
}

func TestUserTransactions_MalformedCursor(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("badcursor@test.com", "securepass123")

	resp := env.AuthGET("/user/transactions?cursor=not-a-transaction-id", token)
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestUserTransactions_OnlyOwnRows(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken, _ := env.CreateAdmin("isolation@test.com")
	tokenA, userA := env.RegisterPlayer("isola@test.com", "securepass123")
	_, userB := env.RegisterPlayer("isolb@test.com", "securepass123")

	for _, id := range []uuid.UUID{userA, userB} {
		resp := env.AuthPOST("/admin/topup", map[string]interface{}{
			"user_id": id.String(), "coins": 10, "amount_paid": 50,
		}, adminToken)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var page txPage
	resp := env.AuthGET("/user/transactions", tokenA)
	testutil.AssertStatus(t, resp, http.StatusOK)
	testutil.DecodeJSON(t, resp, &page)
	require.Len(t, page.Transactions, 1)
}
