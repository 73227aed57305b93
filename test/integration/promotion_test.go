//go:build integration

package integration

import (
	"net/http"
	"sync"
	"testing"

	"github.com/arcadia/loyalty/test/integration/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Catalog Tests ──────────────────────────────────────────────────────────

func TestPromotions_ListShowsOnlyActive(t *testing.T) {
	env := testutil.NewTestEnv(t)
	active := env.SeedPromotion("bonus_points", 100, nil)

	// Out-of-window promotion should not appear.
	expired := uuid.New()
	_, err := env.Pool.Exec(t.Context(), `
		INSERT INTO promotions (id, title, type, value, is_active, start_date, end_date)
		VALUES ($1, 'expired', 'bonus_points', 100, true, now() - interval '2 days', now() - interval '1 day')`,
		expired)
	require.NoError(t, err)

	resp := env.GET("/promotions")
	testutil.AssertStatus(t, resp, http.StatusOK)

	var promos []struct {
		ID uuid.UUID `json:"id"`
	}
	testutil.DecodeJSON(t, resp, &promos)
	require.Len(t, promos, 1)
	assert.Equal(t, active, promos[0].ID)
}

// ─── Redemption Tests ───────────────────────────────────────────────────────

func TestRedeemPromotion_BonusPoints(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("promo1@test.com", "securepass123")
	promoID := env.SeedPromotion("bonus_points", 250, nil)

	resp := env.AuthPOST("/promotions/redeem/"+promoID.String(), nil, token)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var result struct {
		Redemption struct {
			PointsEarned int64 `json:"points_earned"`
			CoinsEarned  int64 `json:"coins_earned"`
		} `json:"redemption"`
		Transaction struct {
			Type              string `json:"type"`
			PointBalanceAfter int64  `json:"point_balance_after"`
		} `json:"transaction"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, int64(250), result.Redemption.PointsEarned)
	assert.Equal(t, int64(0), result.Redemption.CoinsEarned)
	assert.Equal(t, "promotion", result.Transaction.Type)
	assert.Equal(t, int64(250), result.Transaction.PointBalanceAfter)

	testutil.AssertBalances(t, env, userID, 0, 250)
}

func TestRedeemPromotion_ExtraCoins(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("promo2@test.com", "securepass123")
	promoID := env.SeedPromotion("extra_coins", 40, nil)

	resp := env.AuthPOST("/promotions/redeem/"+promoID.String(), nil, token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	testutil.AssertBalances(t, env, userID, 40, 0)
}

func TestRedeemPromotion_Twice(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("promo3@test.com", "securepass123")
	promoID := env.SeedPromotion("bonus_points", 100, nil)

	resp := env.AuthPOST("/promotions/redeem/"+promoID.String(), nil, token)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.AuthPOST("/promotions/redeem/"+promoID.String(), nil, token)
	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, "ALREADY_REDEEMED")

	// The failed attempt must not have granted anything.
	testutil.AssertBalances(t, env, userID, 0, 100)
}

func TestRedeemPromotion_ConcurrentDuplicates(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("promo4@test.com", "securepass123")
	promoID := env.SeedPromotion("bonus_points", 100, nil)

	const attempts = 8
	statuses := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := env.AuthPOST("/promotions/redeem/"+promoID.String(), nil, token)
			resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, s := range statuses {
		if s == http.StatusCreated {
			successes++
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent redeem may win")

	testutil.AssertBalances(t, env, userID, 0, 100)
	n := testutil.CountRows(t, env,
		"SELECT COUNT(*) FROM promotion_redemptions WHERE user_id = $1", userID)
	assert.Equal(t, 1, n)
}

func TestRedeemPromotion_CapExhausted(t *testing.T) {
	env := testutil.NewTestEnv(t)
	one := 1
	promoID := env.SeedPromotion("bonus_points", 100, &one)

	tokenA, _ := env.RegisterPlayer("capa@test.com", "securepass123")
	tokenB, userB := env.RegisterPlayer("capb@test.com", "securepass123")

	resp := env.AuthPOST("/promotions/redeem/"+promoID.String(), nil, tokenA)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.AuthPOST("/promotions/redeem/"+promoID.String(), nil, tokenB)
	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, "PROMOTION_EXHAUSTED")

	// The losing user's rolled-back attempt leaves no redemption row behind.
	testutil.AssertBalances(t, env, userB, 0, 0)
	n := testutil.CountRows(t, env,
		"SELECT COUNT(*) FROM promotion_redemptions WHERE promotion_id = $1", promoID)
	assert.Equal(t, 1, n)
}

func TestRedeemPromotion_InactiveIsNotFound(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("inactive@test.com", "securepass123")

	promoID := uuid.New()
	_, err := env.Pool.Exec(t.Context(), `
		INSERT INTO promotions (id, title, type, value, is_active, start_date, end_date)
		VALUES ($1, 'disabled', 'bonus_points', 100, false, now() - interval '1 hour', now() + interval '1 hour')`,
		promoID)
	require.NoError(t, err)

	resp := env.AuthPOST("/promotions/redeem/"+promoID.String(), nil, token)
	testutil.AssertStatus(t, resp, http.StatusNotFound)
	testutil.AssertErrorCode(t, resp, "PROMOTION_NOT_ACTIVE")
}

func TestRedeemPromotion_UnknownIsNotFound(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("nopromo@test.com", "securepass123")

	resp := env.AuthPOST("/promotions/redeem/"+uuid.New().String(), nil, token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRedeemPromotion_RequiresAuth(t *testing.T) {
	env := testutil.NewTestEnv(t)
	promoID := env.SeedPromotion("bonus_points", 100, nil)

	resp := env.POST("/promotions/redeem/"+promoID.String(), nil, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ─── History Tests ──────────────────────────────────────────────────────────

func TestUserRedeemedPromotions(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("history@test.com", "securepass123")

	first := env.SeedPromotion("bonus_points", 100, nil)
	second := env.SeedPromotion("extra_coins", 25, nil)

	for _, id := range []uuid.UUID{first, second} {
		resp := env.AuthPOST("/promotions/redeem/"+id.String(), nil, token)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := env.AuthGET("/user/promotions/redeemed", token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var redemptions []struct {
		PromotionID uuid.UUID `json:"promotion_id"`
	}
	testutil.DecodeJSON(t, resp, &redemptions)
	assert.Len(t, redemptions, 2)
}
