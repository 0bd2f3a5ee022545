package card

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"travelplanner/internal/domain"
)

const (
	defaultBaseURL = "https://api.stripe.com"
	mockCardPrefix = "mock_card_"
)

// Service issues single-use virtual cards through Stripe Issuing, one card per
// booking with a per-authorization spending limit equal to the booking amount.
// With no secret key configured it returns deterministic-shaped mock card data
// so the full pipeline runs without an issuer account; callers cannot tell the
// modes apart by field shape.
type Service struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	loggerf    func(format string, args ...any)
}

func NewService(secretKey, baseURL string, loggerf func(format string, args ...any)) *Service {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if loggerf == nil {
		loggerf = func(string, ...any) {}
	}
	return &Service{
		secretKey:  secretKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		loggerf:    loggerf,
	}
}

// Create issues a card capped at exactly amountUSD. The cap is the blast
// radius of one booking: a failed booking can never charge more.
func (s *Service) Create(ctx context.Context, amountUSD float64, description, cardholderEmail string) (*domain.VirtualCard, error) {
	if amountUSD <= 0 {
		return nil, ErrInvalidAmount
	}

	if s.secretKey == "" {
		return mockCard(amountUSD, description), nil
	}

	cardholderID, err := s.findOrCreateCardholder(ctx, cardholderEmail)
	if err != nil {
		return nil, err
	}

	amountCents := int64(math.Round(amountUSD * 100))
	form := url.Values{}
	form.Set("cardholder", cardholderID)
	form.Set("currency", "usd")
	form.Set("type", "virtual")
	form.Set("spending_controls[spending_limits][0][amount]", strconv.FormatInt(amountCents, 10))
	form.Set("spending_controls[spending_limits][0][interval]", "per_authorization")
	form.Set("metadata[description]", description)

	var created struct {
		ID       string `json:"id"`
		ExpMonth int    `json:"exp_month"`
		ExpYear  int    `json:"exp_year"`
	}
	if err := s.post(ctx, "/v1/issuing/cards", form, &created); err != nil {
		return nil, err
	}

	// Number and cvc require an expand on retrieve.
	var sensitive struct {
		Number string `json:"number"`
		CVC    string `json:"cvc"`
	}
	query := url.Values{}
	query.Add("expand[]", "number")
	query.Add("expand[]", "cvc")
	if err := s.get(ctx, "/v1/issuing/cards/"+created.ID+"?"+query.Encode(), &sensitive); err != nil {
		return nil, err
	}

	s.loggerf("level=info msg=virtual card issued card_id=%s amount_usd=%.2f", created.ID, amountUSD)

	return &domain.VirtualCard{
		CardID:      created.ID,
		Number:      sensitive.Number,
		ExpMonth:    fmt.Sprintf("%02d", created.ExpMonth),
		ExpYear:     strconv.Itoa(created.ExpYear),
		CVC:         sensitive.CVC,
		AmountUSD:   amountUSD,
		Currency:    "usd",
		Description: description,
		Mock:        false,
	}, nil
}

// Void cancels a card so it can no longer be charged. Idempotent; a no-op for
// mock cards.
func (s *Service) Void(ctx context.Context, cardID string) error {
	if s.secretKey == "" || strings.HasPrefix(cardID, mockCardPrefix) {
		return nil
	}

	form := url.Values{}
	form.Set("status", "canceled")
	if err := s.post(ctx, "/v1/issuing/cards/"+cardID, form, nil); err != nil {
		return err
	}
	s.loggerf("level=info msg=virtual card voided card_id=%s", cardID)
	return nil
}

func (s *Service) findOrCreateCardholder(ctx context.Context, email string) (string, error) {
	query := url.Values{}
	query.Set("email", email)
	query.Set("limit", "1")

	var list struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := s.get(ctx, "/v1/issuing/cardholders?"+query.Encode(), &list); err != nil {
		return "", err
	}
	if len(list.Data) > 0 {
		return list.Data[0].ID, nil
	}

	form := url.Values{}
	form.Set("name", email)
	form.Set("email", email)
	form.Set("type", "individual")
	form.Set("billing[address][line1]", "123 Travel St")
	form.Set("billing[address][city]", "San Francisco")
	form.Set("billing[address][state]", "CA")
	form.Set("billing[address][postal_code]", "94105")
	form.Set("billing[address][country]", "US")

	var created struct {
		ID string `json:"id"`
	}
	if err := s.post(ctx, "/v1/issuing/cardholders", form, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (s *Service) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req, out)
}

func (s *Service) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return err
	}
	return s.do(req, out)
}

func (s *Service) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIssuer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: %s", ErrIssuer, issuerErrorMessage(resp))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrIssuer, err)
	}
	return nil
}

func issuerErrorMessage(resp *http.Response) string {
	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		return resp.Status
	}
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return resp.Status
}

const mockIDLetters = "abcdefghijklmnopqrstuvwxyz0123456789"

func mockCard(amountUSD float64, description string) *domain.VirtualCard {
	suffix := make([]byte, 8)
	for i := range suffix {
		suffix[i] = mockIDLetters[rand.Intn(len(mockIDLetters))]
	}
	return &domain.VirtualCard{
		CardID:      mockCardPrefix + string(suffix),
		Number:      "4111111111111111", // standard Visa test number
		ExpMonth:    "12",
		ExpYear:     "2027",
		CVC:         "123",
		AmountUSD:   amountUSD,
		Currency:    "usd",
		Description: description,
		Mock:        true,
	}
}
