// internal/app/features/auditlog/list.go
package auditlog

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/labhub/internal/app/store/audit"
	"github.com/dalemusser/labhub/internal/app/system/timeouts"
	"github.com/dalemusser/labhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const pageSize = 50

// ServeList handles GET /audit - the audit event list with filtering.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	eventType := strings.TrimSpace(q.Get("event_type"))
	labID := strings.TrimSpace(q.Get("lab_id"))
	startDate := strings.TrimSpace(q.Get("start_date"))
	endDate := strings.TrimSpace(q.Get("end_date"))

	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}

	data := listData{
		BaseVM:     viewdata.NewBaseVM(w, r, "Audit Log", "/labs"),
		Category:   category,
		EventType:  eventType,
		LabID:      labID,
		StartDate:  startDate,
		EndDate:    endDate,
		Query:      filterQuery(category, eventType, labID, startDate, endDate),
		Categories: allCategories(),
		EventTypes: eventTypesForCategory(category),
		Page:       1,
		TotalPages: 1,
	}
	if h.Events == nil {
		data.Disabled = true
		templates.Render(w, r, "audit_list", data)
		return
	}

	filter := audit.QueryFilter{
		Category:  category,
		EventType: eventType,
		LabID:     labID,
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}
	if t, err := time.Parse("2006-01-02", startDate); err == nil {
		filter.StartTime = &t
	}
	if t, err := time.Parse("2006-01-02", endDate); err == nil {
		endOfDay := t.Add(24*time.Hour - time.Second)
		filter.EndTime = &endOfDay
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		h.ErrLog.LogServerError(w, r, "database error", err, "A database error occurred.", "/labs")
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.Log.Error("failed to count audit events", zap.Error(err))
		h.ErrLog.LogServerError(w, r, "database error", err, "A database error occurred.", "/labs")
		return
	}

	data.Items = make([]listItem, 0, len(events))
	for _, e := range events {
		data.Items = append(data.Items, listItem{
			Timestamp: e.Timestamp.UTC(),
			Category:  e.Category,
			EventType: e.EventType,
			Actor:     viewdata.OrNA(firstNonEmpty(e.ActorEmail, e.ActorID)),
			Target:    viewdata.OrNA(target(e)),
			LabID:     viewdata.OrNA(e.LabID),
			IP:        e.IP,
			Success:   e.Success,
			Reason:    e.FailureReason,
			Details:   e.Details,
		})
	}

	totalPages := max(int((total+pageSize-1)/pageSize), 1)
	data.Page = page
	data.TotalPages = totalPages
	data.Total = total
	data.HasPrev = page > 1
	data.HasNext = page < totalPages
	data.PrevPage = max(page-1, 1)
	data.NextPage = min(page+1, totalPages)

	templates.Render(w, r, "audit_list", data)
}

func target(e audit.Event) string {
	switch {
	case e.TargetKind != "" && e.TargetID != "":
		return e.TargetKind + " " + e.TargetID
	case e.TargetKind != "":
		return e.TargetKind
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// filterQuery encodes the active filters, without the page.
func filterQuery(category, eventType, labID, start, end string) template.URL {
	v := url.Values{}
	for k, s := range map[string]string{
		"category":   category,
		"event_type": eventType,
		"lab_id":     labID,
		"start_date": start,
		"end_date":   end,
	} {
		if s != "" {
			v.Set(k, s)
		}
	}
	return template.URL(v.Encode())
}
