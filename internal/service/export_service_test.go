package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressCSV(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ingestSolve(t, env, 1, "two-sum", "optimal", intPtr(12))
	ingestSolve(t, env, 1, "reverse-linked-list", "attempted", nil)

	svc := NewExportService(env.Mastery, env.Taxonomy, nil)
	filename, data, err := svc.ProgressCSV(ctx, 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "exports/progress_1_"))
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + two problems

	assert.Equal(t, "problem_id", records[0][0])
	rows := map[string][]string{}
	for _, rec := range records[1:] {
		rows[rec[0]] = rec
	}

	solved := rows["two-sum"]
	require.NotNil(t, solved)
	assert.Equal(t, "arrays", solved[1])
	assert.Equal(t, "1", solved[3]) // attempts
	assert.Equal(t, "2", solved[4]) // optimal first solve
	assert.NotEmpty(t, solved[5])
	assert.Equal(t, "12", solved[6])

	attempted := rows["reverse-linked-list"]
	require.NotNil(t, attempted)
	assert.Equal(t, "0", attempted[4])
	assert.Empty(t, attempted[5])
	assert.Empty(t, attempted[6])
}

func TestProgressCSVEmptyUser(t *testing.T) {
	env := newTestEnv(t)

	svc := NewExportService(env.Mastery, env.Taxonomy, nil)
	_, data, err := svc.ProgressCSV(context.Background(), 42)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1) // header only
}
