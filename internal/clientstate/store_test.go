package clientstate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidraw-backend/internal/models"
)

func openAt(t *testing.T, path string, now time.Time) *Store {
	t.Helper()
	s, err := Open(path)
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	return s
}

func newTestStore(t *testing.T, now time.Time) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	return openAt(t, path, now), path
}

var day1 = time.Date(2025, 12, 25, 9, 30, 0, 0, time.UTC)

func TestStore_EmptyQuota(t *testing.T) {
	s, _ := newTestStore(t, day1)

	assert.Equal(t, models.QuotaState{Date: "2025-12-25", Used: 0}, s.Quota())
	assert.Equal(t, 10, s.RemainingCount(10))
	assert.True(t, s.HasQuotaRemaining(10))
}

func TestStore_ConsumeQuotaPersists(t *testing.T) {
	s, path := newTestStore(t, day1)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.ConsumeQuota())
	}
	assert.Equal(t, 3, s.UsedCount())

	reopened := openAt(t, path, day1.Add(2*time.Hour))
	assert.Equal(t, 3, reopened.UsedCount())
	assert.Equal(t, 7, reopened.RemainingCount(10))
}

func TestStore_QuotaResetsOnNewDay(t *testing.T) {
	s, path := newTestStore(t, day1)
	require.NoError(t, s.ConsumeQuota())
	require.NoError(t, s.ConsumeQuota())

	tomorrow := openAt(t, path, day1.Add(24*time.Hour))
	assert.Equal(t, models.QuotaState{Date: "2025-12-26", Used: 0}, tomorrow.Quota())

	require.NoError(t, tomorrow.ConsumeQuota())
	assert.Equal(t, 1, tomorrow.UsedCount())
}

func TestStore_CorruptQuotaReadsAsFresh(t *testing.T) {
	s, _ := newTestStore(t, day1)
	require.NoError(t, s.set(QuotaKey, "{not json"))

	assert.Equal(t, models.QuotaState{Date: "2025-12-25", Used: 0}, s.Quota())
}

func TestStore_RemainingNeverNegative(t *testing.T) {
	s, _ := newTestStore(t, day1)
	for i := 0; i < 4; i++ {
		require.NoError(t, s.ConsumeQuota())
	}

	assert.Equal(t, 0, s.RemainingCount(3))
	assert.False(t, s.HasQuotaRemaining(3))
}

func TestStore_AccessPassword(t *testing.T) {
	s, path := newTestStore(t, day1)
	assert.False(t, s.HasAccessPassword())

	require.NoError(t, s.SetAccessPassword("secret"))
	assert.Equal(t, "secret", openAt(t, path, day1).AccessPassword())

	require.NoError(t, s.ClearAccessPassword())
	assert.False(t, openAt(t, path, day1).HasAccessPassword())
}

func TestStore_LLMConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      models.ProviderConfig
		expected bool
	}{
		{"complete", models.ProviderConfig{Provider: "deepseek", BaseURL: "https://api.deepseek.com/v1", APIKey: "sk", ModelID: "deepseek-chat"}, true},
		{"missing base url", models.ProviderConfig{Provider: "openai", APIKey: "sk"}, false},
		{"missing key", models.ProviderConfig{Provider: "openai", BaseURL: "https://api.openai.com/v1"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, path := newTestStore(t, day1)
			require.NoError(t, s.SetLLMConfig(tc.cfg))

			reopened := openAt(t, path, day1)
			assert.Equal(t, tc.expected, reopened.HasLLMConfig())
			require.NotNil(t, reopened.LLMConfig())
			assert.Equal(t, tc.cfg, *reopened.LLMConfig())
		})
	}
}

func TestStore_ClearLLMConfig(t *testing.T) {
	s, _ := newTestStore(t, day1)
	require.NoError(t, s.SetLLMConfig(models.ProviderConfig{BaseURL: "https://x/v1", APIKey: "sk"}))
	require.NoError(t, s.ClearLLMConfig())

	assert.Nil(t, s.LLMConfig())
	assert.False(t, s.HasLLMConfig())
}

func TestOpen_RejectsUnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	_, err := Open(path)
	assert.Error(t, err)
}
