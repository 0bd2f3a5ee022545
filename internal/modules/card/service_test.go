package card

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_MockMode(t *testing.T) {
	s := NewService("", "", nil)

	card, err := s.Create(context.Background(), 1240.50, "trip x flight", "dana@example.com")

	require.NoError(t, err)
	assert.True(t, card.Mock)
	assert.True(t, strings.HasPrefix(card.CardID, "mock_card_"))
	assert.Len(t, card.CardID, len("mock_card_")+8)
	assert.Equal(t, "4111111111111111", card.Number)
	assert.Equal(t, "12", card.ExpMonth)
	assert.Equal(t, "2027", card.ExpYear)
	assert.Equal(t, "123", card.CVC)
	assert.Equal(t, 1240.50, card.AmountUSD)
	assert.Equal(t, "1111", card.Last4())
}

func TestCreate_RejectsNonPositiveAmount(t *testing.T) {
	s := NewService("", "", nil)

	_, err := s.Create(context.Background(), 0, "x", "dana@example.com")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = s.Create(context.Background(), -5, "x", "dana@example.com")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestVoid_MockModeIsNoOp(t *testing.T) {
	s := NewService("", "", nil)

	assert.NoError(t, s.Void(context.Background(), "mock_card_abc12345"))
}

func TestVoid_SkipsMockCardsEvenWithKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("issuer must not be called for mock cards")
	}))
	defer server.Close()
	s := NewService("sk_test_x", server.URL, nil)

	assert.NoError(t, s.Void(context.Background(), "mock_card_abc12345"))
}

func TestCreate_LiveIssuance(t *testing.T) {
	var sawSpendingLimit, sawExpand bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk_test_x", r.Header.Get("Authorization"))

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/issuing/cardholders":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"id": "ich_existing"}},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/v1/issuing/cards":
			_ = r.ParseForm()
			assert.Equal(t, "ich_existing", r.PostForm.Get("cardholder"))
			assert.Equal(t, "per_authorization", r.PostForm.Get("spending_controls[spending_limits][0][interval]"))
			if r.PostForm.Get("spending_controls[spending_limits][0][amount]") == "124050" {
				sawSpendingLimit = true
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "ic_live1", "exp_month": 3, "exp_year": 2028,
			})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/issuing/cards/ic_live1":
			sawExpand = r.URL.Query()["expand[]"] != nil
			_ = json.NewEncoder(w).Encode(map[string]any{
				"number": "4000000000000002", "cvc": "987",
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	s := NewService("sk_test_x", server.URL, nil)

	card, err := s.Create(context.Background(), 1240.50, "trip x flight", "dana@example.com")

	require.NoError(t, err)
	assert.False(t, card.Mock)
	assert.Equal(t, "ic_live1", card.CardID)
	assert.Equal(t, "4000000000000002", card.Number)
	assert.Equal(t, "03", card.ExpMonth)
	assert.Equal(t, "2028", card.ExpYear)
	assert.Equal(t, "987", card.CVC)
	assert.True(t, sawSpendingLimit)
	assert.True(t, sawExpand)
}

func TestCreate_CreatesCardholderWhenMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/issuing/cardholders":
			_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
		case r.Method == http.MethodPost && r.URL.Path == "/v1/issuing/cardholders":
			_ = r.ParseForm()
			assert.Equal(t, "dana@example.com", r.PostForm.Get("email"))
			assert.Equal(t, "individual", r.PostForm.Get("type"))
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "ich_new"})
		case r.Method == http.MethodPost && r.URL.Path == "/v1/issuing/cards":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "ic_2", "exp_month": 1, "exp_year": 2029})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/issuing/cards/ic_2":
			_ = json.NewEncoder(w).Encode(map[string]any{"number": "4242424242424242", "cvc": "111"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	s := NewService("sk_test_x", server.URL, nil)

	card, err := s.Create(context.Background(), 50, "x", "dana@example.com")

	require.NoError(t, err)
	assert.Equal(t, "ic_2", card.CardID)
}

func TestCreate_IssuerErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "insufficient issuing balance"},
		})
	}))
	defer server.Close()

	s := NewService("sk_test_x", server.URL, nil)

	_, err := s.Create(context.Background(), 50, "x", "dana@example.com")

	assert.ErrorIs(t, err, ErrIssuer)
	assert.Contains(t, err.Error(), "insufficient issuing balance")
}

func TestVoid_Live(t *testing.T) {
	var canceled bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/issuing/cards/ic_live1", r.URL.Path)
		_ = r.ParseForm()
		canceled = r.PostForm.Get("status") == "canceled"
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "ic_live1", "status": "canceled"})
	}))
	defer server.Close()

	s := NewService("sk_test_x", server.URL, nil)

	require.NoError(t, s.Void(context.Background(), "ic_live1"))
	assert.True(t, canceled)
}
