package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/config"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

// ModerationClient is the slice of the OpenAI client the guardrail
// needs; tests substitute a fake.
type ModerationClient interface {
	Moderations(ctx context.Context, request openai.ModerationRequest) (openai.ModerationResponse, error)
}

// GuardrailService runs content-moderation checks against the hosted
// model and caches verdicts in-process. The cache is keyed by the
// SHA-256 of the content with a fixed TTL; entries are only evicted on
// expiry.
type GuardrailService struct {
	client  ModerationClient
	cfg     config.GuardrailConfig
	cache   map[string]*guardrailEntry
	mutex   sync.RWMutex
	nowFunc func() time.Time
}

// GuardrailResult is one moderation verdict.
type GuardrailResult struct {
	Flagged    bool      `json:"flagged"`
	Categories []string  `json:"categories,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
	Cached     bool      `json:"cached"`
}

type guardrailEntry struct {
	result    *GuardrailResult
	expiresAt time.Time
}

func NewGuardrailService(client ModerationClient, cfg config.GuardrailConfig) *GuardrailService {
	s := &GuardrailService{
		client:  client,
		cfg:     cfg,
		cache:   make(map[string]*guardrailEntry),
		nowFunc: time.Now,
	}

	if cfg.Enabled {
		go s.cleanupRoutine()
	}

	return s
}

// CheckContent evaluates content and returns the verdict, serving a
// cached verdict when one is still inside the TTL. A disabled
// guardrail passes everything.
func (s *GuardrailService) CheckContent(ctx context.Context, content string) (*GuardrailResult, error) {
	if !s.cfg.Enabled || content == "" {
		return &GuardrailResult{Flagged: false, CheckedAt: s.nowFunc()}, nil
	}

	key := contentHash(content)

	s.mutex.RLock()
	entry, exists := s.cache[key]
	s.mutex.RUnlock()

	if exists && s.nowFunc().Before(entry.expiresAt) {
		cached := *entry.result
		cached.Cached = true
		return &cached, nil
	}

	start := time.Now()
	resp, err := s.client.Moderations(ctx, openai.ModerationRequest{
		Input: content,
		Model: s.cfg.Model,
	})
	utils.LogAICall(s.cfg.Model, 0, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	result := &GuardrailResult{
		Flagged:   false,
		CheckedAt: s.nowFunc(),
	}
	for _, r := range resp.Results {
		if r.Flagged {
			result.Flagged = true
			result.Categories = flaggedCategories(r.Categories)
			break
		}
	}

	s.mutex.Lock()
	s.cache[key] = &guardrailEntry{
		result:    result,
		expiresAt: s.nowFunc().Add(s.cfg.CacheTTL),
	}
	s.mutex.Unlock()

	return result, nil
}

// CacheSize reports the number of live cache entries.
func (s *GuardrailService) CacheSize() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.cache)
}

func (s *GuardrailService) cleanupRoutine() {
	interval := s.cfg.CacheTTL
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		s.mutex.Lock()
		now := s.nowFunc()
		for key, entry := range s.cache {
			if now.After(entry.expiresAt) {
				delete(s.cache, key)
			}
		}
		s.mutex.Unlock()
	}
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func flaggedCategories(c openai.ResultCategories) []string {
	var out []string
	if c.Hate {
		out = append(out, "hate")
	}
	if c.HateThreatening {
		out = append(out, "hate/threatening")
	}
	if c.Harassment {
		out = append(out, "harassment")
	}
	if c.HarassmentThreatening {
		out = append(out, "harassment/threatening")
	}
	if c.SelfHarm {
		out = append(out, "self-harm")
	}
	if c.Sexual {
		out = append(out, "sexual")
	}
	if c.SexualMinors {
		out = append(out, "sexual/minors")
	}
	if c.Violence {
		out = append(out, "violence")
	}
	if c.ViolenceGraphic {
		out = append(out, "violence/graphic")
	}
	return out
}
