package profile

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"travelplanner/internal/domain"
	"travelplanner/internal/pkg/crypto"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func testCrypt(t *testing.T) *crypto.Service {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	s, err := crypto.New(key)
	require.NoError(t, err)
	return s
}

func strPtr(s string) *string { return &s }

func TestUpdate_EncryptsDocumentNumbers(t *testing.T) {
	users := &mockUserRepo{}
	crypt := testCrypt(t)
	svc := NewService(users, crypt)

	user := &domain.User{ID: uuid.New(), Email: "dana@example.com"}
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	users.On("Update", mock.Anything, user).Return(nil)

	resp, err := svc.Update(context.Background(), user.ID, UpdateProfileRequest{
		FirstName:      strPtr("Dana"),
		PassportNumber: strPtr("P12345678"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Dana", user.FirstName)
	require.NotNil(t, user.PassportNumberEnc)
	assert.NotContains(t, *user.PassportNumberEnc, "P12345678")

	plain, err := crypt.Decrypt(user.PassportNumberEnc)
	require.NoError(t, err)
	assert.Equal(t, "P12345678", plain)

	assert.True(t, resp.HasPassportNumber)
	assert.False(t, resp.HasTSAKnownTraveler)
}

func TestUpdate_ClearingDocumentNumber(t *testing.T) {
	users := &mockUserRepo{}
	svc := NewService(users, testCrypt(t))

	enc := "old-ciphertext"
	user := &domain.User{ID: uuid.New(), PassportNumberEnc: &enc}
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	users.On("Update", mock.Anything, user).Return(nil)

	resp, err := svc.Update(context.Background(), user.ID, UpdateProfileRequest{
		PassportNumber: strPtr(""),
	})

	require.NoError(t, err)
	assert.Nil(t, user.PassportNumberEnc)
	assert.False(t, resp.HasPassportNumber)
}

func TestUpdate_OmittedFieldsUntouched(t *testing.T) {
	users := &mockUserRepo{}
	svc := NewService(users, testCrypt(t))

	enc := "ciphertext"
	user := &domain.User{ID: uuid.New(), FirstName: "Dana", PassportNumberEnc: &enc}
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	users.On("Update", mock.Anything, user).Return(nil)

	_, err := svc.Update(context.Background(), user.ID, UpdateProfileRequest{
		Phone: strPtr("+14155550123"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Dana", user.FirstName)
	assert.Equal(t, "ciphertext", *user.PassportNumberEnc)
}

func TestGet_NeverExposesDocumentNumbers(t *testing.T) {
	users := &mockUserRepo{}
	svc := NewService(users, testCrypt(t))

	enc := "ciphertext"
	user := &domain.User{ID: uuid.New(), Email: "dana@example.com", PassportNumberEnc: &enc}
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	resp, err := svc.Get(context.Background(), user.ID)

	require.NoError(t, err)
	assert.True(t, resp.HasPassportNumber)
}

func TestUpdate_LoyaltyNumbersReplaced(t *testing.T) {
	users := &mockUserRepo{}
	svc := NewService(users, testCrypt(t))

	user := &domain.User{
		ID: uuid.New(),
		LoyaltyNumbers: domain.JSONList{
			map[string]any{"program": "old", "number": "1"},
		},
	}
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	users.On("Update", mock.Anything, user).Return(nil)

	_, err := svc.Update(context.Background(), user.ID, UpdateProfileRequest{
		LoyaltyNumbers: []LoyaltyNumberDTO{
			{Program: "united_mileageplus", Number: "UA123456"},
			{Program: "marriott_bonvoy", Number: "MB987654"},
		},
	})

	require.NoError(t, err)
	require.Len(t, user.LoyaltyNumbers, 2)
}
