package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/exporter"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

// ExportFormat selects the audit export document type.
type ExportFormat string

const (
	ExportPDF   ExportFormat = "pdf"
	ExportExcel ExportFormat = "excel"
)

// ParseExportFormat accepts "pdf", "excel" and "xlsx".
func ParseExportFormat(s string) (ExportFormat, error) {
	switch s {
	case "pdf":
		return ExportPDF, nil
	case "excel", "xlsx":
		return ExportExcel, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

func (f ExportFormat) path() string {
	if f == ExportExcel {
		return auditExcelPath
	}
	return auditPDFPath
}

func (f ExportFormat) extension() string {
	if f == ExportExcel {
		return "xlsx"
	}
	return "pdf"
}

func (f ExportFormat) contentType() string {
	if f == ExportExcel {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

// Report is an exported document and where it was delivered.
type Report struct {
	Name     string
	Size     int
	Location string
}

// AuditService reads the server's audit trail. Every call goes through the
// authenticated gateway; a 403 for non-admin accounts surfaces as
// *client.StatusError.
type AuditService interface {
	List(ctx context.Context, page int, f models.AuditFilter) (*models.AuditPage, error)
	Stats(ctx context.Context, f models.AuditFilter) (*models.AuditStats, error)
	Export(ctx context.Context, format ExportFormat, f models.AuditFilter) (*Report, error)
}

// now is the clock used to date export file names.
var now = time.Now

type auditService struct {
	client client.Client
	sink   exporter.Sink
	log    logging.Logger
}

func NewAuditService(c client.Client, sink exporter.Sink, log logging.Logger) AuditService {
	return &auditService{client: c, sink: sink, log: log}
}

func (s *auditService) List(ctx context.Context, page int, f models.AuditFilter) (*models.AuditPage, error) {
	q := f.Values()
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}

	var out models.AuditPage
	if err := getJSON(ctx, s.client, withQuery(auditPath, q.Encode()), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *auditService) Stats(ctx context.Context, f models.AuditFilter) (*models.AuditStats, error) {
	var out models.AuditStats
	if err := getJSON(ctx, s.client, withQuery(auditStatsPath, f.Values().Encode()), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export downloads the document and hands it to the sink as
// auditoria_<YYYY-MM-DD>.<ext>.
func (s *auditService) Export(ctx context.Context, format ExportFormat, f models.AuditFilter) (*Report, error) {
	if s.sink == nil {
		return nil, fmt.Errorf("no export destination configured")
	}

	data, contentType, err := getBytes(ctx, s.client, withQuery(format.path(), f.Values().Encode()))
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = format.contentType()
	}

	name := fmt.Sprintf("auditoria_%s.%s", now().Format(time.DateOnly), format.extension())
	where, err := s.sink.Put(ctx, name, contentType, data)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "audit report exported", "format", string(format), "bytes", len(data), "location", where)
	return &Report{Name: name, Size: len(data), Location: where}, nil
}

func withQuery(p, query string) string {
	if query == "" {
		return p
	}
	return p + "?" + query
}
