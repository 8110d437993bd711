package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sceptic-ai/sceptic-go/internal/models"
)

func TestJournalRoundTrip(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "state", "ledger.db"))
	require.NoError(t, err)
	defer j.Close()

	record := Record{
		ID:         "analysis_abc123",
		Prediction: models.AuthorAI,
		Confidence: 0.91,
		RiskScore:  82,
		Timestamp:  time.Now().UTC().Truncate(time.Second),
	}
	receipt := Receipt{TxHash: "0xdeadbeef", ExplorerURL: "https://explorer.example/tx/0xdeadbeef"}

	require.NoError(t, j.Put(record, receipt))

	gotRecord, gotReceipt, err := j.Get("analysis_abc123")
	require.NoError(t, err)
	assert.Equal(t, record.ID, gotRecord.ID)
	assert.Equal(t, record.Prediction, gotRecord.Prediction)
	assert.Equal(t, record.RiskScore, gotRecord.RiskScore)
	assert.Equal(t, receipt, *gotReceipt)
}

func TestJournalGetMissing(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer j.Close()

	_, _, err = j.Get("analysis_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
