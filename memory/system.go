package memory

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mindwell/sage/core"
	"github.com/mindwell/sage/insight"
	"github.com/mindwell/sage/timeref"
)

// Config sizes the memory layers.
type Config struct {
	// WorkingSize caps the working-memory buffer. Default: 10.
	WorkingSize int

	// EpisodicLimit is the soft cap on persisted episodic records; the
	// oldest beyond it are trimmed. Default: 100.
	EpisodicLimit int
}

func (c Config) withDefaults() Config {
	if c.WorkingSize <= 0 {
		c.WorkingSize = 10
	}
	if c.EpisodicLimit <= 0 {
		c.EpisodicLimit = 100
	}
	return c
}

// System owns the three memory layers for one user and composes the file
// store, the optional vector index and the time-reference resolver.
type System struct {
	userID   string
	store    *FileStore
	vector   VectorIndex // nil when the capability is absent
	resolver *timeref.Resolver
	config   Config

	working  []WorkingItem
	episodic []EpisodicRecord
	semantic map[string]any
}

// NewSystem builds a System for userID and loads its persisted state.
// vector may be nil; resolver may be nil, in which case a wall-clock
// resolver is used.
func NewSystem(userID string, store *FileStore, vector VectorIndex, resolver *timeref.Resolver, cfg Config) *System {
	if resolver == nil {
		resolver = timeref.New()
	}
	s := &System{
		userID:   userID,
		store:    store,
		vector:   vector,
		resolver: resolver,
		config:   cfg.withDefaults(),
	}
	s.episodic, s.semantic = store.Load(userID)
	return s
}

// Resolver exposes the time-reference resolver this System merges with.
func (s *System) Resolver() *timeref.Resolver {
	return s.resolver
}

// AddWorking appends a message to working memory, evicting the oldest
// entries beyond the configured capacity. Working memory is never persisted.
func (s *System) AddWorking(msg core.Message) {
	s.working = append(s.working, WorkingItem{
		ID:        uuid.New().String(),
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
		Message:   msg,
	})
	if n := len(s.working); n > s.config.WorkingSize {
		s.working = s.working[n-s.config.WorkingSize:]
	}
}

// WorkingContext returns the buffered messages, oldest first.
func (s *System) WorkingContext() []core.Message {
	out := make([]core.Message, len(s.working))
	for i, item := range s.working {
		out[i] = item.Message
	}
	return out
}

// Working returns the raw working-memory items.
func (s *System) Working() []WorkingItem {
	return s.working
}

// Episodic returns the episodic records in insertion order.
func (s *System) Episodic() []EpisodicRecord {
	return s.episodic
}

// AddEpisodic records an interaction as a new episodic record, mirrors it to
// the vector index when a summary is present, and persists synchronously.
func (s *System) AddEpisodic(ctx context.Context, inter Interaction, summary string) EpisodicRecord {
	rec := NewEpisodicRecord(time.Now())
	rec.Interaction = inter
	rec.Summary = summary

	s.episodic = append(s.episodic, rec)
	s.trimEpisodic(ctx)

	if summary != "" {
		s.mirrorToVector(ctx, rec)
	}
	s.persist()
	return rec
}

// AddTimeReferenced records an interaction under a temporal expression.
// If the expression does not resolve it is a no-op returning false; the
// caller should fall back to AddEpisodic. Otherwise the interaction merges
// into an existing record within the tolerance window or creates a new one.
func (s *System) AddTimeReferenced(ctx context.Context, expr string, inter Interaction, activity string) bool {
	ts, ok := s.resolver.Resolve(expr)
	if !ok {
		log.Printf("[MEMORY] Unresolvable time reference: %q", expr)
		return false
	}

	summary := SummarizeTimeEvent(inter.EmotionalInsights, activity)

	if idx, found := s.findWithinTolerance(ts); found {
		rec := &s.episodic[idx]
		// Second write wins: latest interaction data replaces the old.
		rec.Interaction = inter
		if rec.TimeReference == "" {
			rec.TimeReference = expr
		}
		if activity != "" {
			rec.Activity = activity
		} else if rec.Activity == "" {
			rec.Activity = insight.DefaultActivity
		}
		rec.Summary = summary

		s.mirrorToVector(ctx, *rec)
		s.persist()
		return true
	}

	rec := NewEpisodicRecord(ts)
	rec.TimeReference = expr
	rec.Interaction = inter
	rec.Activity = activity
	if rec.Activity == "" {
		rec.Activity = insight.DefaultActivity
	}
	rec.Summary = summary

	s.episodic = append(s.episodic, rec)
	s.trimEpisodic(ctx)
	s.mirrorToVector(ctx, rec)
	s.persist()
	return true
}

// findWithinTolerance locates the first record whose timestamp lies within
// the merge tolerance of ts.
func (s *System) findWithinTolerance(ts time.Time) (int, bool) {
	target := float64(ts.UnixNano()) / float64(time.Second)
	tolerance := timeref.Tolerance.Seconds()
	for i := range s.episodic {
		if abs(s.episodic[i].Timestamp-target) < tolerance {
			return i, true
		}
	}
	return 0, false
}

// EpisodicByTime looks up the record for a temporal expression: an exact
// time_reference match first, then the closest record within the tolerance
// window of the resolved timestamp.
func (s *System) EpisodicByTime(expr string) (EpisodicRecord, bool) {
	for i := range s.episodic {
		if s.episodic[i].TimeReference == expr {
			return s.episodic[i], true
		}
	}

	ts, ok := s.resolver.Resolve(expr)
	if !ok {
		return EpisodicRecord{}, false
	}
	target := float64(ts.UnixNano()) / float64(time.Second)
	tolerance := timeref.Tolerance.Seconds()

	bestDiff := tolerance
	bestIdx := -1
	for i := range s.episodic {
		diff := abs(s.episodic[i].Timestamp - target)
		// Strict comparison: on an exact tie the earlier record wins.
		if diff < bestDiff {
			bestDiff = diff
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return EpisodicRecord{}, false
	}
	return s.episodic[bestIdx], true
}

// UpdateSemantic replaces the value at key and persists synchronously.
func (s *System) UpdateSemantic(key string, value any) {
	if s.semantic == nil {
		s.semantic = map[string]any{}
	}
	s.semantic[key] = value
	s.persist()
}

// Semantic returns the value stored at key.
func (s *System) Semantic(key string) (any, bool) {
	v, ok := s.semantic[key]
	return v, ok
}

// Profile returns the user profile, or the empty skeleton. Never fails.
func (s *System) Profile() Profile {
	return decodeProfile(s.semantic[ProfileKey])
}

// QueryRelevant returns up to limit episodic records relevant to query.
// With a vector index available it is a similarity search; on index absence
// or failure it falls back to the most recent limit records in insertion
// order.
func (s *System) QueryRelevant(ctx context.Context, query string, limit int) []EpisodicRecord {
	if limit <= 0 {
		limit = 5
	}

	if s.vectorAvailable() && len(s.episodic) > 0 {
		k := limit
		if k > len(s.episodic) {
			k = len(s.episodic)
		}
		results, err := s.vector.Query(ctx, query, k)
		if err != nil {
			log.Printf("[MEMORY] Vector query failed, falling back to recency: %v", err)
		} else if len(results) > 0 {
			out := make([]EpisodicRecord, 0, len(results))
			for _, res := range results {
				out = append(out, recordFromMetadata(res))
			}
			return out
		}
	}

	if len(s.episodic) <= limit {
		return append([]EpisodicRecord(nil), s.episodic...)
	}
	return append([]EpisodicRecord(nil), s.episodic[len(s.episodic)-limit:]...)
}

// Reset clears all three layers, best-effort clears the vector index and
// deletes the persisted files. Partial failure of any sub-step is logged
// and does not abort the remaining cleanup.
func (s *System) Reset(ctx context.Context) {
	ids := make([]string, len(s.episodic))
	for i := range s.episodic {
		ids[i] = s.episodic[i].ID
	}

	s.working = nil
	s.episodic = nil
	s.semantic = map[string]any{}

	if s.vectorAvailable() && len(ids) > 0 {
		if err := s.vector.Clear(ctx, ids); err != nil {
			log.Printf("[MEMORY] Could not clear vector index: %v", err)
		}
	}
	if err := s.store.Delete(s.userID); err != nil {
		log.Printf("[MEMORY] Could not delete persisted files: %v", err)
	}
}

// SummarizeTimeEvent derives the regenerable summary string for a
// time-referenced event.
func SummarizeTimeEvent(ins insight.Insights, activity string) string {
	var parts []string
	if len(ins.Emotions) > 0 {
		parts = append(parts, "表达了"+strings.Join(ins.Emotions, ", "))
	}
	if activity != "" {
		parts = append(parts, "进行了"+activity)
	}
	if len(parts) == 0 {
		return "发生了某些事件"
	}
	return strings.Join(parts, "；")
}

// SummarizeInteraction derives the summary string for a plain (non
// time-referenced) turn.
func SummarizeInteraction(ins insight.Insights) string {
	if len(ins.Emotions) > 0 {
		return "用户表达了 " + strings.Join(ins.Emotions, ", ")
	}
	return "用户表达了 感受"
}

// persist writes both layers through the file store. Failure is logged and
// the in-memory state stays authoritative for this session.
func (s *System) persist() {
	if err := s.store.Save(s.userID, s.episodic, s.semantic); err != nil {
		log.Printf("[MEMORY] Persist failed, continuing with in-memory state: %v", err)
	}
}

func (s *System) vectorAvailable() bool {
	return s.vector != nil && s.vector.Available()
}

// trimEpisodic enforces the soft cap, dropping the oldest records and
// best-effort clearing their vector entries.
func (s *System) trimEpisodic(ctx context.Context) {
	n := len(s.episodic)
	if n <= s.config.EpisodicLimit {
		return
	}
	trimmed := s.episodic[:n-s.config.EpisodicLimit]
	s.episodic = append([]EpisodicRecord(nil), s.episodic[n-s.config.EpisodicLimit:]...)

	if s.vectorAvailable() {
		ids := make([]string, len(trimmed))
		for i := range trimmed {
			ids[i] = trimmed[i].ID
		}
		if err := s.vector.Clear(ctx, ids); err != nil {
			log.Printf("[MEMORY] Could not clear trimmed vector entries: %v", err)
		}
	}
}

// mirrorToVector indexes a record's summary, flattening structured fields to
// strings. Never fails the caller.
func (s *System) mirrorToVector(ctx context.Context, rec EpisodicRecord) {
	if !s.vectorAvailable() {
		return
	}

	metadata := map[string]string{
		"summary":   rec.Summary,
		"timestamp": strconv.FormatFloat(rec.Timestamp, 'f', -1, 64),
		"datetime":  rec.Datetime,
	}
	if rec.TimeReference != "" {
		metadata["time_reference"] = rec.TimeReference
	}
	if rec.Activity != "" {
		metadata["activity"] = rec.Activity
	}
	if raw, err := json.Marshal(rec.Interaction); err == nil {
		metadata["interaction"] = string(raw)
	}

	if err := s.vector.Add(ctx, rec.ID, rec.Summary, metadata); err != nil {
		log.Printf("[MEMORY] Could not add record %s to vector index: %v", rec.ID, err)
	}
}

// recordFromMetadata reconstructs an EpisodicRecord from flattened vector
// metadata, parsing structured fields back out of their serialized text.
func recordFromMetadata(res VectorResult) EpisodicRecord {
	rec := EpisodicRecord{
		ID:            res.ID,
		Summary:       res.Metadata["summary"],
		Datetime:      res.Metadata["datetime"],
		TimeReference: res.Metadata["time_reference"],
		Activity:      res.Metadata["activity"],
	}
	if ts, err := strconv.ParseFloat(res.Metadata["timestamp"], 64); err == nil {
		rec.Timestamp = ts
	}
	if raw := res.Metadata["interaction"]; raw != "" {
		// Best effort; an undecodable blob leaves the zero interaction.
		_ = json.Unmarshal([]byte(raw), &rec.Interaction)
	}
	return rec
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
