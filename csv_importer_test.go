package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVImporter_ImportCSV(t *testing.T) {
	db := setupTestDB(t)
	path := filepath.Join(t.TempDir(), "youtube_comments.csv")
	content := "Name,Comment,Likes,Time,Reply Count,Sentiment,EngagementScore\n" +
		"alice,first,5,2024-05-01T10:00:00Z,1,Positive,7\n" +
		"bob,reply,0,2024-05-01T11:00:00Z,,Neutral,0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	result, err := NewCSVImporter(db).ImportCSV(path, "https://youtu.be/abc123DEF45")
	require.NoError(t, err)
	assert.Equal(t, 1, result.TopLevel)
	assert.Equal(t, 1, result.Replies)
	assert.True(t, result.Analytics)

	run, err := db.GetRun(result.RunUUID)
	require.NoError(t, err)
	assert.Equal(t, "abc123DEF45", run.VideoID)
	assert.Equal(t, SOURCE_IMPORT, run.Source)
	assert.Equal(t, RUN_STATUS_DONE, run.Status)

	rows, err := db.GetRunComments(result.RunUUID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0].Author)
	assert.True(t, rows[1].IsReply)
}

func TestCSVImporter_Errors(t *testing.T) {
	db := setupTestDB(t)
	importer := NewCSVImporter(db)

	_, err := importer.ImportCSV(filepath.Join(t.TempDir(), "missing.csv"), "")
	assert.Error(t, err)

	_, err = importer.ImportCSV("whatever.csv", "https://example.com/")
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte(""), 0644))
	_, err = importer.ImportCSV(empty, "")
	assert.Error(t, err)
}
