package chatbotService

import (
	"LeadPilot/internal/api/chatbot"
	"LeadPilot/internal/entity"
	contextPkg "LeadPilot/pkg/context"
	"LeadPilot/pkg/matcher"
	redisPkg "LeadPilot/pkg/redis"
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	snapshotName = "chatbot"

	keywordMatchWeight = 20
	regexMatchWeight   = 30
	maxPatternScore    = 100

	unknownConfidence    = 0.30
	lowConfidencePenalty = 0.5
)

// snapshot is the immutable view of patterns and templates a scoring pass
// runs against. Reloads build a fresh snapshot and swap the pointer, so
// in-flight turns keep a consistent view.
type snapshot struct {
	patterns       []entity.IntentPattern
	byName         map[string]entity.IntentPattern
	matcher        matcher.IMatcher
	templates      map[string][]entity.ResponseTemplate
	clarifications map[string]string
	version        string
	loadedAt       time.Time
}

// Classify scores the message against every loaded intent pattern. Zero
// matches yield the unknown intent at a fixed low confidence; a winner below
// its own threshold is returned with halved confidence and the fallback flag
// so downstream components treat it as a guess.
func (s *chatbotService) Classify(ctx context.Context, message string) (chatbot.ClassificationResult, error) {
	snap, err := s.getSnapshot(ctx)
	if err != nil {
		return chatbot.ClassificationResult{
			Intent:     entity.IntentUnknown,
			Confidence: unknownConfidence,
			Fallback:   true,
		}, err
	}

	return classifyWith(snap, message), nil
}

// ReloadSnapshot rebuilds the snapshot from storage, mints a new version and
// mirrors it to Redis so sibling instances pick up the change lazily.
func (s *chatbotService) ReloadSnapshot(ctx context.Context) (*chatbot.ReloadResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	version, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return nil, err
	}

	snap, err := s.buildSnapshot(ctx, version)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Snapshot reload failed")
		return nil, chatbot.ErrSnapshotReload
	}

	s.snapMu.Lock()
	s.snap.Store(snap)
	s.snapMu.Unlock()

	if err := s.redis.SetSnapshotVersion(ctx, snapshotName, version); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to mirror snapshot version")
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"version":    version,
		"patterns":   snap.matcher.Len(),
	}).Info("Pattern snapshot reloaded")

	return &chatbot.ReloadResponse{
		Patterns:  snap.matcher.Len(),
		Templates: countTemplates(snap.templates),
		Version:   snap.version,
		LoadedAt:  snap.loadedAt,
	}, nil
}

// getSnapshot returns the current snapshot, lazily loading on first use and
// reloading when the Redis version mirror says another instance reloaded.
func (s *chatbotService) getSnapshot(ctx context.Context) (*snapshot, error) {
	snap := s.snap.Load()

	remote, err := s.redis.GetSnapshotVersion(ctx, snapshotName)
	if err != nil && !errors.Is(err, redisPkg.Nil) {
		if snap != nil {
			return snap, nil
		}
		remote = ""
	}

	if snap != nil && (remote == "" || remote == snap.version) {
		return snap, nil
	}

	s.snapMu.Lock()
	defer s.snapMu.Unlock()

	if current := s.snap.Load(); current != nil && (remote == "" || remote == current.version) {
		return current, nil
	}

	version := remote
	if version == "" {
		version, err = s.utils.NewULIDFromTimestamp(time.Now())
		if err != nil {
			return nil, err
		}
		if err := s.redis.SetSnapshotVersion(ctx, snapshotName, version); err != nil {
			s.log.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("Failed to mirror snapshot version")
		}
	}

	fresh, err := s.buildSnapshot(ctx, version)
	if err != nil {
		if snap != nil {
			return snap, nil
		}
		return nil, err
	}

	s.snap.Store(fresh)
	return fresh, nil
}

func (s *chatbotService) buildSnapshot(ctx context.Context, version string) (*snapshot, error) {
	client, err := s.chatbotRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	patterns, err := client.Intents.GetActivePatterns(ctx)
	if err != nil {
		return nil, err
	}

	templates, err := client.Templates.GetActiveTemplates(ctx)
	if err != nil {
		return nil, err
	}

	matcherPatterns := make([]matcher.Pattern, 0, len(patterns))
	byName := make(map[string]entity.IntentPattern, len(patterns))
	for _, p := range patterns {
		matcherPatterns = append(matcherPatterns, matcher.Pattern{
			Name:          p.Name,
			Keywords:      p.Keywords,
			Regexes:       p.Regexes,
			KeywordWeight: keywordMatchWeight,
			RegexWeight:   regexMatchWeight,
		})
		byName[p.Name] = p
	}

	byIntent := make(map[string][]entity.ResponseTemplate)
	clarifications := make(map[string]string)
	for _, t := range templates {
		if t.Scenario == entity.ScenarioClarification {
			if _, exists := clarifications[t.IntentName]; !exists {
				clarifications[t.IntentName] = t.Template
			}
			continue
		}
		byIntent[t.IntentName] = append(byIntent[t.IntentName], t)
	}

	return &snapshot{
		patterns:       patterns,
		byName:         byName,
		matcher:        matcher.New(matcherPatterns, maxPatternScore, s.log),
		templates:      byIntent,
		clarifications: clarifications,
		version:        version,
		loadedAt:       time.Now(),
	}, nil
}

func countTemplates(byIntent map[string][]entity.ResponseTemplate) int {
	total := 0
	for _, ts := range byIntent {
		total += len(ts)
	}
	return total
}
