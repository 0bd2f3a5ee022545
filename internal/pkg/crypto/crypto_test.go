package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	s, err := New(key)
	require.NoError(t, err)
	return s
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	s := newTestService(t)

	enc, err := s.Encrypt("P12345678")
	require.NoError(t, err)
	require.NotNil(t, enc)
	assert.NotContains(t, *enc, "P12345678")

	plain, err := s.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "P12345678", plain)
}

func TestEncryptEmptyIsNil(t *testing.T) {
	s := newTestService(t)

	enc, err := s.Encrypt("")
	require.NoError(t, err)
	assert.Nil(t, enc)
}

func TestDecryptNilIsEmpty(t *testing.T) {
	s := newTestService(t)

	plain, err := s.Decrypt(nil)
	require.NoError(t, err)
	assert.Equal(t, "", plain)
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	s := newTestService(t)

	a, err := s.Encrypt("same value")
	require.NoError(t, err)
	b, err := s.Encrypt("same value")
	require.NoError(t, err)

	assert.NotEqual(t, *a, *b)
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	s1 := newTestService(t)
	s2 := newTestService(t)

	enc, err := s1.Encrypt("secret")
	require.NoError(t, err)

	_, err = s2.Decrypt(enc)
	assert.Error(t, err)
}

func TestDecryptGarbageFails(t *testing.T) {
	s := newTestService(t)

	garbage := "not base64!!"
	_, err := s.Decrypt(&garbage)
	assert.Error(t, err)

	short := "AAAA"
	_, err = s.Decrypt(&short)
	assert.Error(t, err)
}

func TestNewRejectsBadKeys(t *testing.T) {
	_, err := New("not-base64!!")
	assert.Error(t, err)

	_, err = New("c2hvcnQ=") // "short"
	assert.Error(t, err)
}
