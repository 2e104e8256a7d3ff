// Package clientstate keeps the terminal client's local bookkeeping: the
// daily quota ledger, the stored access password and a personal provider
// configuration. Each entry is kept as a JSON string under a fixed key, the
// same layout a browser client keeps in localStorage.
package clientstate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"aidraw-backend/internal/models"
)

const (
	QuotaKey          = "ai-draw-quota"
	AccessPasswordKey = "ai-draw-access-password"
	LLMConfigKey      = "ai-draw-llm-config"
)

// DefaultDailyQuota applies when the server's ceiling is unknown.
const DefaultDailyQuota = 10

const dateLayout = "2006-01-02"

// Store is a file-backed key/value store. It is not safe for concurrent use.
type Store struct {
	v    *viper.Viper
	path string
	now  func() time.Time
}

// DefaultPath returns ~/.aidraw/state.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	return filepath.Join(home, ".aidraw", "state.json"), nil
}

// Open loads the state file at path. A missing file is an empty store.
func Open(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read state file %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat state file %s", path)
	}

	return &Store{v: v, path: path, now: time.Now}, nil
}

func (s *Store) today() string {
	return s.now().UTC().Format(dateLayout)
}

func (s *Store) get(key string) string {
	return s.v.GetString(key)
}

func (s *Store) set(key, value string) error {
	s.v.Set(key, value)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "create state directory")
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return errors.Wrapf(err, "write state file %s", s.path)
	}
	return nil
}

// ──── Quota ────

// Quota returns today's ledger. A record from another day, or one that does
// not parse, reads as a fresh ledger for today.
func (s *Store) Quota() models.QuotaState {
	fresh := models.QuotaState{Date: s.today(), Used: 0}

	raw := s.get(QuotaKey)
	if raw == "" {
		return fresh
	}
	var q models.QuotaState
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		log.WithError(err).Debug("discarding unreadable quota record")
		return fresh
	}
	if q.Date != fresh.Date {
		return fresh
	}
	return q
}

func (s *Store) UsedCount() int {
	return s.Quota().Used
}

func (s *Store) RemainingCount(daily int) int {
	remaining := daily - s.UsedCount()
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *Store) HasQuotaRemaining(daily int) bool {
	return s.RemainingCount(daily) > 0
}

// ConsumeQuota records one more call for today.
func (s *Store) ConsumeQuota() error {
	q := s.Quota()
	q.Used++
	data, err := json.Marshal(q)
	if err != nil {
		return errors.Wrap(err, "encode quota record")
	}
	return s.set(QuotaKey, string(data))
}

// ──── Access password ────

func (s *Store) AccessPassword() string {
	return s.get(AccessPasswordKey)
}

func (s *Store) SetAccessPassword(password string) error {
	return s.set(AccessPasswordKey, password)
}

func (s *Store) ClearAccessPassword() error {
	return s.set(AccessPasswordKey, "")
}

func (s *Store) HasAccessPassword() bool {
	return s.AccessPassword() != ""
}

// ──── Personal provider config ────

// LLMConfig returns the stored provider config, or nil when none is stored or
// the record does not parse.
func (s *Store) LLMConfig() *models.ProviderConfig {
	raw := s.get(LLMConfigKey)
	if raw == "" {
		return nil
	}
	var cfg models.ProviderConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		log.WithError(err).Debug("discarding unreadable llm config")
		return nil
	}
	return &cfg
}

func (s *Store) SetLLMConfig(cfg models.ProviderConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode llm config")
	}
	return s.set(LLMConfigKey, string(data))
}

func (s *Store) ClearLLMConfig() error {
	return s.set(LLMConfigKey, "")
}

// HasLLMConfig is true only when both an API key and a base URL are stored.
func (s *Store) HasLLMConfig() bool {
	cfg := s.LLMConfig()
	return cfg != nil && cfg.APIKey != "" && cfg.BaseURL != ""
}
