package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/registro-api/internal/models"
	"github.com/sjperalta/registro-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReportService_StatusChangeWorkbook(t *testing.T) {
	svc := NewReportService()
	runAt := time.Date(2026, 10, 19, 2, 30, 0, 0, time.UTC)
	successorID := uuid.New()
	successorExpiry := time.Date(2027, 9, 30, 0, 0, 0, 0, time.UTC)

	results := []models.StatusChangeResult{
		{
			ContractNumber:  "CT-1",
			Subject:         "Vigilanza",
			ExpiryDate:      time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
			PreviousStatus:  models.ContractStatusExpired,
			NewStatus:       models.ContractStatusRenewed,
			OperationCode:   "CONTRATTO_RINNOVATO",
			SuccessorID:     &successorID,
			SuccessorExpiry: &successorExpiry,
		},
		{
			ContractNumber: "CT-2",
			Subject:        "Mensa",
			ExpiryDate:     time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
			PreviousStatus: models.ContractStatusActive,
			NewStatus:      models.ContractStatusExpired,
			OperationCode:  "CONTRATTO_SCADUTO",
		},
	}

	attachment, err := svc.StatusChangeWorkbook(JobAutoRenewal, runAt, results)
	require.NoError(t, err)
	assert.Equal(t, "riepilogo_contracts.auto-renewal_20261019_0230.xlsx", attachment.Filename)
	assert.Equal(t, xlsxContentType, attachment.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(attachment.Content))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Variazioni")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "Contratto", rows[3][0])
	assert.Equal(t, "CT-1", rows[4][0])
	assert.Equal(t, "Rinnovato", rows[4][4])
	assert.Equal(t, successorID.String(), rows[4][6])
	assert.Equal(t, "CT-2", rows[5][0])
	assert.Equal(t, "Scaduto", rows[5][4])
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "In scadenza", StatusLabel(models.ContractStatusNearExpiry))
	assert.Equal(t, "sconosciuto", StatusLabel("sconosciuto"))
}

func TestReportService_Archive(t *testing.T) {
	att := &Attachment{Filename: "riepilogo_contracts.expiry-transition_20261019_0200.xlsx", Content: []byte("xlsx")}

	path, err := NewReportService().Archive(att)
	require.NoError(t, err)
	assert.Empty(t, path)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewReportService(WithArchive(store))

	path, err = svc.Archive(att)
	require.NoError(t, err)
	assert.True(t, store.Exists(path))

	paths, err := store.List(digestArchiveDir)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, paths)
}
