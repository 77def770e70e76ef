package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"welfarewatch-web/internal/domain"
	"welfarewatch-web/internal/observability"
)

const maxUploadSize = 5 << 20

type reviewData struct {
	Review   *domain.Review
	Comments []domain.Comment
}

type reviewFormData struct {
	Company *domain.Company
	Input   domain.ReviewInput
}

// Review shows one review with its comments
func (v *Views) Review(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		v.notFound(w, r)
		return
	}

	review, err := v.backend.GetReview(r.Context(), id)
	if err != nil {
		v.fail(w, r, err)
		return
	}
	comments, err := v.backend.ListComments(r.Context(), domain.ListParams{
		Filters: map[string]string{"review": strconv.FormatInt(id, 10)},
	})
	if err != nil {
		v.fail(w, r, err)
		return
	}

	v.render(w, r, http.StatusOK, "review", reviewData{Review: review, Comments: comments.Results}, "")
}

// CreateReviewPage shows the review form for the company in ?company=
func (v *Views) CreateReviewPage(w http.ResponseWriter, r *http.Request) {
	data := reviewFormData{Input: domain.ReviewInput{OverallRating: 5}}

	if id, err := strconv.ParseInt(r.URL.Query().Get("company"), 10, 64); err == nil && id > 0 {
		company, err := v.backend.GetCompany(r.Context(), id)
		if err != nil {
			v.fail(w, r, err)
			return
		}
		data.Company = company
		data.Input.Company = id
	}

	v.render(w, r, http.StatusOK, "review_form", data, "")
}

// CreateReview submits a review and, if attached, its image
func (v *Views) CreateReview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		v.render(w, r, http.StatusRequestEntityTooLarge, "review_form", reviewFormData{}, "Image is too large")
		return
	}

	in := domain.ReviewInput{
		Company:           int64(formInt(r, "company")),
		Title:             strings.TrimSpace(r.PostFormValue("title")),
		Content:           strings.TrimSpace(r.PostFormValue("content")),
		OverallRating:     formInt(r, "overall_rating"),
		WelfareRating:     formInt(r, "welfare_rating"),
		EnvironmentRating: formInt(r, "environment_rating"),
		DevelopmentRating: formInt(r, "development_rating"),
		ManagementRating:  formInt(r, "management_rating"),
		JobTitle:          strings.TrimSpace(r.PostFormValue("job_title")),
		EmploymentStatus:  r.PostFormValue("employment_status"),
		IsAnonymous:       formBool(r, "is_anonymous"),
	}
	if years := formInt(r, "work_years"); years > 0 {
		in.WorkYears = &years
	}

	review, err := v.backend.CreateReview(r.Context(), in)
	if err != nil {
		if statusFor(err) == http.StatusUnprocessableEntity {
			v.render(w, r, statusFor(err), "review_form", reviewFormData{Input: in}, errorMessage(err))
			return
		}
		v.fail(w, r, err)
		return
	}

	if r.MultipartForm != nil {
		if file, header, err := r.FormFile("image"); err == nil {
			defer file.Close()
			if _, err := v.backend.UploadReviewImage(r.Context(), review.ID, header.Filename, file, r.PostFormValue("caption")); err != nil {
				observability.FromContext(r.Context()).Warn("review created but image upload failed",
					slog.Int64("review_id", review.ID),
					slog.String("error", err.Error()))
			}
		}
	}

	http.Redirect(w, r, "/my-reviews", http.StatusSeeOther)
}

// MarkHelpful records a helpful vote on a review
func (v *Views) MarkHelpful(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		v.notFound(w, r)
		return
	}
	if err := v.backend.MarkReviewHelpful(r.Context(), id); err != nil {
		v.fail(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/reviews/%d", id), http.StatusSeeOther)
}

// AddComment posts a comment or a reply on a review
func (v *Views) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		v.notFound(w, r)
		return
	}

	in := domain.CommentInput{
		Review:      id,
		Content:     strings.TrimSpace(r.PostFormValue("content")),
		IsAnonymous: formBool(r, "is_anonymous"),
	}
	if parent, err := strconv.ParseInt(r.PostFormValue("parent"), 10, 64); err == nil && parent > 0 {
		in.Parent = &parent
	}

	if _, err := v.backend.CreateComment(r.Context(), in); err != nil {
		v.fail(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/reviews/%d", id), http.StatusSeeOther)
}

// MarkCommentHelpful records a helpful vote on a comment
func (v *Views) MarkCommentHelpful(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		v.notFound(w, r)
		return
	}
	if err := v.backend.MarkCommentHelpful(r.Context(), id); err != nil {
		v.fail(w, r, err)
		return
	}
	back := "/"
	if review, err := strconv.ParseInt(r.PostFormValue("review"), 10, 64); err == nil && review > 0 {
		back = fmt.Sprintf("/reviews/%d", review)
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// Report files a report against a review or comment
func (v *Views) Report(w http.ResponseWriter, r *http.Request) {
	in := domain.ReportInput{
		ContentType: r.PostFormValue("content_type"),
		ObjectID:    int64(formInt(r, "object_id")),
		Reason:      strings.TrimSpace(r.PostFormValue("reason")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}
	if _, err := v.backend.CreateReport(r.Context(), in); err != nil {
		v.fail(w, r, err)
		return
	}

	back := "/"
	if review, err := strconv.ParseInt(r.PostFormValue("review"), 10, 64); err == nil && review > 0 {
		back = fmt.Sprintf("/reviews/%d", review)
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// MyReviews lists the current user's reviews with their moderation state
func (v *Views) MyReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := v.backend.MyReviews(r.Context())
	if err != nil {
		v.fail(w, r, err)
		return
	}
	v.render(w, r, http.StatusOK, "my_reviews", reviews, "")
}

// DeleteReview removes one of the current user's reviews
func (v *Views) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		v.notFound(w, r)
		return
	}
	if err := v.backend.DeleteReview(r.Context(), id); err != nil {
		v.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/my-reviews", http.StatusSeeOther)
}
