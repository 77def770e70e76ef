package handler

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"welfarewatch-web/internal/domain"
)

type statistic struct {
	Name  string
	Value string
}

type reportsData struct {
	Status string
	Page   int
	Result *domain.Page[domain.Report]
}

// AdminDashboard shows the moderation statistics
func (v *Views) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := v.backend.ModerationStatistics(r.Context())
	if err != nil {
		v.fail(w, r, err)
		return
	}
	v.render(w, r, http.StatusOK, "admin_dashboard", flattenStatistics(stats), "")
}

// flattenStatistics turns the nested counters into sorted "section.counter" rows
func flattenStatistics(stats domain.ModerationStatistics) []statistic {
	var out []statistic
	for section, raw := range stats {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(raw, &nested); err == nil {
			for name, value := range nested {
				out = append(out, statistic{Name: section + "." + name, Value: strings.Trim(string(value), `"`)})
			}
			continue
		}
		out = append(out, statistic{Name: section, Value: strings.Trim(string(raw), `"`)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PendingReviews lists reviews waiting for moderation
func (v *Views) PendingReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := v.backend.PendingReviews(r.Context())
	if err != nil {
		v.fail(w, r, err)
		return
	}
	v.render(w, r, http.StatusOK, "admin_reviews", reviews, "")
}

// ModerateReview approves or rejects a review
func (v *Views) ModerateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		v.notFound(w, r)
		return
	}
	decision := domain.ModerationDecision{
		ReviewID: id,
		Action:   r.PostFormValue("action"),
		Reason:   strings.TrimSpace(r.PostFormValue("reason")),
	}
	if err := v.backend.ModerateReview(r.Context(), decision); err != nil {
		v.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/admin/reviews", http.StatusSeeOther)
}

// PendingComments lists comments waiting for moderation
func (v *Views) PendingComments(w http.ResponseWriter, r *http.Request) {
	comments, err := v.backend.PendingComments(r.Context())
	if err != nil {
		v.fail(w, r, err)
		return
	}
	v.render(w, r, http.StatusOK, "admin_comments", comments, "")
}

// ModerateComment approves or rejects a comment
func (v *Views) ModerateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		v.notFound(w, r)
		return
	}
	decision := domain.ModerationDecision{
		CommentID: id,
		Action:    r.PostFormValue("action"),
		Reason:    strings.TrimSpace(r.PostFormValue("reason")),
	}
	if err := v.backend.ModerateComment(r.Context(), decision); err != nil {
		v.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/admin/comments", http.StatusSeeOther)
}

// Reports lists user reports, optionally filtered by status
func (v *Views) Reports(w http.ResponseWriter, r *http.Request) {
	data := reportsData{Status: r.URL.Query().Get("status"), Page: pageParam(r)}
	params := domain.ListParams{Page: data.Page, Ordering: "-created_at"}
	if data.Status != "" {
		params.Filters = map[string]string{"status": data.Status}
	}

	result, err := v.backend.ListReports(r.Context(), params)
	if err != nil {
		v.fail(w, r, err)
		return
	}
	data.Result = result
	v.render(w, r, http.StatusOK, "admin_reports", data, "")
}

// HandleReport resolves or dismisses a report
func (v *Views) HandleReport(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		v.notFound(w, r)
		return
	}
	resolution := domain.ReportResolution{
		Status:     r.PostFormValue("status"),
		HandleNote: strings.TrimSpace(r.PostFormValue("handle_note")),
	}
	if err := v.backend.HandleReport(r.Context(), id, resolution); err != nil {
		v.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/admin/reports", http.StatusSeeOther)
}
