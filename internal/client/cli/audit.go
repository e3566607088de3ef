package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/client/services"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
)

// parseFilter reads key=value arguments into an audit filter. Short aliases
// are accepted for the common keys.
func parseFilter(args []string) (models.AuditFilter, error) {
	var f models.AuditFilter
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || v == "" {
			return f, fmt.Errorf("%w: expected key=value, got %q", common.ErrorInvalidFormat, arg)
		}

		switch strings.ToLower(k) {
		case "action":
			f.Action = strings.ToUpper(v)
		case "severity":
			f.Severity = strings.ToUpper(v)
		case "user", "username":
			f.Username = v
		case "ip", "ip_address":
			f.IPAddress = v
		case "type", "object_type":
			f.ObjectType = v
		case "from", "start_date":
			f.StartDate = v
		case "to", "end_date":
			f.EndDate = v
		case "success":
			b, err := strconv.ParseBool(v)
			if err != nil {
				return f, fmt.Errorf("%w: success must be true or false, got %q", common.ErrorInvalidFormat, v)
			}
			f.Success = &b
		case "q", "search":
			f.Search = v
		case "order", "ordering":
			f.Ordering = v
		default:
			return f, fmt.Errorf("unknown filter %q", k)
		}
	}
	return f, nil
}

// parseAuditArgs splits "[page] [key=value...]".
func parseAuditArgs(args []string) (int, models.AuditFilter, error) {
	page := 1
	if len(args) > 0 && !strings.Contains(args[0], "=") {
		p, err := strconv.Atoi(args[0])
		if err != nil || p < 1 {
			return 0, models.AuditFilter{}, fmt.Errorf("%w: invalid page %q", common.ErrorInvalidFormat, args[0])
		}
		page = p
		args = args[1:]
	}

	f, err := parseFilter(args)
	return page, f, err
}

// Audit lists one page of the audit log.
func (a *App) Audit(ctx context.Context, args []string) error {
	page, f, err := parseAuditArgs(args)
	if err != nil {
		return err
	}

	res, err := a.auditService.List(ctx, page, f)
	if err != nil {
		return err
	}

	if len(res.Results) == 0 {
		printlnFn("No audit entries")
		return nil
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tACTION\tSEVERITY\tUSER\tIP\tOK\tDESCRIPTION")
	for _, e := range res.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
			e.ID, e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, e.Severity,
			e.Username, e.IPAddress, e.Success, truncate(e.Description, 60))
	}
	_ = tw.Flush()
	printlnFn(strings.TrimRight(sb.String(), "\n"))

	footer := fmt.Sprintf("page %d, %d entries total", page, res.Count)
	if res.HasNext() {
		footer += fmt.Sprintf(" (next: audit %d)", page+1)
	}
	printlnFn(footer)
	return nil
}

// Stats prints audit statistics.
func (a *App) Stats(ctx context.Context, args []string) error {
	f, err := parseFilter(args)
	if err != nil {
		return err
	}

	st, err := a.auditService.Stats(ctx, f)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("total: %d  last 24h: %d  last week: %d  ok: %d  failed: %d",
		st.TotalLogs, st.Last24Hours, st.LastWeek, st.SuccessCount, st.ErrorCount))

	printBuckets("by action", st.ByAction, func(b models.CountBucket) string { return b.Action })
	printBuckets("by severity", st.BySeverity, func(b models.CountBucket) string { return b.Severity })
	printBuckets("by user", st.ByUser, func(b models.CountBucket) string { return b.Username })
	printBuckets("by ip", st.ByIP, func(b models.CountBucket) string { return b.IPAddress })
	return nil
}

func printBuckets(title string, buckets []models.CountBucket, key func(models.CountBucket) string) {
	if len(buckets) == 0 {
		return
	}
	parts := make([]string, 0, len(buckets))
	for _, b := range buckets {
		parts = append(parts, fmt.Sprintf("%s=%d", key(b), b.Count))
	}
	printlnFn(title + ": " + strings.Join(parts, ", "))
}

// Export downloads the audit log as pdf or excel.
func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: export pdf|excel [key=value...]")
	}

	format, err := services.ParseExportFormat(strings.ToLower(args[0]))
	if err != nil {
		return err
	}
	f, err := parseFilter(args[1:])
	if err != nil {
		return err
	}

	rep, err := a.auditService.Export(ctx, format, f)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Saved %s (%d bytes) to %s", rep.Name, rep.Size, rep.Location))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
