package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/composure/metrics"
)

func sampleRecord(stamp string) metrics.AssessmentRecord {
	rec := metrics.NewAssessmentRecord(stamp)
	rec.PerformanceStability = []metrics.TaskSummary{{
		Task: 1, Level: 1, Difficulty: 1,
		Score: 5, TargetsHit: 5, TargetsTotal: 5,
		CompletionPercentage: 100, DisruptionsExperienced: 1, AverageResponseTime: 1.25,
	}}
	rec.RecoveryTimes = []float64{2.016}
	rec.EmotionalResponses = []metrics.EmotionalResponse{{Feedback: "Shake it off!", Task: 1, Level: 1, Difficulty: 1, Time: 12.5}}
	rec.Persistence = []metrics.PersistenceEntry{{Task: 1, Level: 1, Difficulty: 1}}
	rec.TotalTimePlayed = 31.2
	rec.StabilityRating = 5
	rec.DisruptionRecoveryRating = 8
	rec.PersistenceRating = 10
	rec.NeuroticismScore = 7.6
	return rec
}

func backends(t *testing.T) map[string]Store {
	dir := t.TempDir()
	sq, err := NewSQLite(filepath.Join(dir, "assessments.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"json":   NewJSONFile(filepath.Join(dir, "assessments.json")),
		"sqlite": sq,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			before, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, before)

			first := sampleRecord("2025-01-01 10:00:00")
			require.NoError(t, s.Append(ctx, first))

			second := sampleRecord("2025-01-02 11:30:00")
			second.Persistence[0].Abandoned = true
			require.NoError(t, s.Append(ctx, second))

			after, err := s.Load(ctx)
			require.NoError(t, err)
			require.Len(t, after, 2)
			assert.Equal(t, first, after[0])
			assert.Equal(t, second, after[1])
		})
	}
}

func TestJSONFile_MissingAndCorruptAreEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	missing := NewJSONFile(filepath.Join(dir, "nested", "none.json"))
	recs, err := missing.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)

	// Append creates parent directories
	require.NoError(t, missing.Append(ctx, sampleRecord("2025-01-01 00:00:00")))
	recs, _ = missing.Load(ctx)
	assert.Len(t, recs, 1)

	corruptPath := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corruptPath, []byte("{not json"), 0o644))
	corrupt := NewJSONFile(corruptPath)
	recs, err = corrupt.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)

	require.NoError(t, corrupt.Append(ctx, sampleRecord("2025-01-01 00:00:00")))
	recs, _ = corrupt.Load(ctx)
	assert.Len(t, recs, 1, "corrupt content is replaced by a fresh array")
}

func TestJSONFile_IndentedArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json")
	s := NewJSONFile(path)
	require.NoError(t, s.Append(context.Background(), sampleRecord("2025-01-01 00:00:00")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte('['), data[0])
	assert.Contains(t, string(data), "\n    {")
	assert.Contains(t, string(data), `"neuroticism_score": 7.6`)
	assert.Contains(t, string(data), `"timestamp": "2025-01-01 00:00:00"`)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestJSONFile_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// Parent path component is a regular file
	s := NewJSONFile(filepath.Join(blocker, "a.json"))
	err := s.Append(context.Background(), sampleRecord("2025-01-01 00:00:00"))
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(BackendJSON, filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	assert.IsType(t, &JSONFile{}, s)

	s, err = Open(BackendSQLite, filepath.Join(dir, "a.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open("redis", "x")
	assert.Error(t, err)
}
