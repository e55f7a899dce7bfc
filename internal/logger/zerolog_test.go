package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecords(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var records []map[string]interface{}
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var rec map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	return records
}

func TestAdapterTagsComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.DebugLevel)

	log.Info("FileStore", "state saved", map[string]interface{}{"write_seq": 3})
	log.Error("FileStore", errors.New("disk full"), nil)

	records := decodeRecords(t, &buf)
	require.Len(t, records, 2)

	assert.Equal(t, "FileStore", records[0]["component"])
	assert.Equal(t, "state saved", records[0]["message"])
	assert.Equal(t, float64(3), records[0]["write_seq"])
	assert.NotEmpty(t, records[0]["time"])

	assert.Equal(t, "error", records[1]["level"])
	assert.Equal(t, "disk full", records[1]["error"])
}

func TestLevelFiltersRecords(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.InfoLevel)

	log.Debug("FileStore", "below threshold", nil)
	assert.Zero(t, buf.Len())

	log.Warning("FileStore", "kept", nil)
	assert.NotZero(t, buf.Len())
}
