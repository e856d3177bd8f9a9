package services

import (
	"fmt"
	"time"

	"github.com/sjperalta/registro-api/internal/models"
	"github.com/sjperalta/registro-api/internal/storage"
	"github.com/sjperalta/registro-api/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var statusLabels = map[string]string{
	models.ContractStatusActive:     "Attivo",
	models.ContractStatusNearExpiry: "In scadenza",
	models.ContractStatusExpired:    "Scaduto",
	models.ContractStatusRenewed:    "Rinnovato",
}

// StatusLabel returns the Italian label for a contract status
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

const digestArchiveDir = "digests"

type ReportService struct {
	archive *storage.LocalStorage
}

type ReportOption func(*ReportService)

// WithArchive keeps a copy of every digest workbook in store
func WithArchive(store *storage.LocalStorage) ReportOption {
	return func(s *ReportService) { s.archive = store }
}

func NewReportService(opts ...ReportOption) *ReportService {
	s := &ReportService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Archive stores a copy of att when an archive is configured. It returns the
// archived path, or "" when archiving is off.
func (s *ReportService) Archive(att *Attachment) (string, error) {
	if s.archive == nil || att == nil {
		return "", nil
	}
	path, err := s.archive.Save(att.Content, att.Filename, digestArchiveDir)
	if err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", att.Filename, err)
	}
	logger.Debug("Digest workbook archived", "path", path)
	return path, nil
}

// StatusChangeWorkbook builds an XLSX listing the transitions of one job run
func (s *ReportService) StatusChangeWorkbook(job string, runAt time.Time, results []models.StatusChangeResult) (*Attachment, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Variazioni"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	dateStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 14})

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("Riepilogo %s", job))
	_ = f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	_ = f.SetCellValue(sheet, "A2", runAt.UTC().Format("02/01/2006 15:04 MST"))

	headers := []string{"Contratto", "Oggetto", "Scadenza", "Stato precedente", "Nuovo stato", "Codice operazione", "Successore", "Nuova scadenza"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		_ = f.SetCellValue(sheet, cell, h)
	}
	_ = f.SetCellStyle(sheet, "A4", "H4", headerStyle)

	for i, r := range results {
		row := i + 5
		values := []interface{}{
			r.ContractNumber,
			r.Subject,
			r.ExpiryDate,
			StatusLabel(r.PreviousStatus),
			StatusLabel(r.NewStatus),
			r.OperationCode,
			"",
			"",
		}
		if r.SuccessorID != nil {
			values[6] = r.SuccessorID.String()
		}
		if r.SuccessorExpiry != nil {
			values[7] = *r.SuccessorExpiry
		}

		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}
		_ = f.SetCellStyle(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), dateStyle)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("H%d", row), fmt.Sprintf("H%d", row), dateStyle)
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "B", 40)
	_ = f.SetColWidth(sheet, "C", "F", 20)
	_ = f.SetColWidth(sheet, "G", "G", 38)
	_ = f.SetColWidth(sheet, "H", "H", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	return &Attachment{
		Filename:    fmt.Sprintf("riepilogo_%s_%s.xlsx", job, runAt.UTC().Format("20060102_1504")),
		Content:     buf.Bytes(),
		ContentType: xlsxContentType,
	}, nil
}
