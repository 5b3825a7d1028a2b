package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

func TestManager(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	t.Run("生成并解析Token", func(t *testing.T) {
		pair, err := m.GenerateToken(42, "reader", "reader@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(3600), pair.ExpiresIn)

		claims, err := m.ParseToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "reader", claims.Username)
		assert.Equal(t, "42", claims.Subject)
		assert.Equal(t, "bookshelf", claims.Issuer)
	})

	t.Run("错误密钥签发的Token无效", func(t *testing.T) {
		other := NewManager("other-secret", time.Hour, time.Hour)
		pair, err := other.GenerateToken(1, "x", "x@example.com")
		require.NoError(t, err)

		_, err = m.ParseToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("过期Token", func(t *testing.T) {
		expired := NewManager("test-secret", -time.Minute, time.Hour)
		pair, err := expired.GenerateToken(1, "x", "x@example.com")
		require.NoError(t, err)

		_, err = m.ParseToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("刷新Access Token", func(t *testing.T) {
		pair, err := m.GenerateToken(7, "reader", "reader@example.com")
		require.NoError(t, err)

		access, err := m.RefreshAccessToken(pair.RefreshToken, "reader", "reader@example.com")
		require.NoError(t, err)

		claims, err := m.ParseToken(access)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.UserID)
		assert.Equal(t, "reader@example.com", claims.Email)
	})
}
