package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"welfarewatch-web/internal/domain"
)

// Accounts

// Login exchanges credentials for a token and profile
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	var out domain.AuthResult
	if err := c.sendJSON(ctx, http.MethodPost, "/accounts/login/", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. It does not log the user in.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.RegisterResult, error) {
	var out domain.RegisterResult
	if err := c.sendJSON(ctx, http.MethodPost, "/accounts/register/", reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser returns the profile the current token belongs to
func (c *Client) CurrentUser(ctx context.Context) (*domain.Profile, error) {
	var out domain.Profile
	if err := c.getJSON(ctx, "/accounts/me/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile replaces editable profile fields and returns the new profile
func (c *Client) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Profile, error) {
	var out domain.Profile
	if err := c.sendJSON(ctx, http.MethodPut, "/accounts/profile/", update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword changes the current user's password
func (c *Client) ChangePassword(ctx context.Context, change domain.PasswordChange) error {
	return c.sendJSON(ctx, http.MethodPost, "/accounts/change-password/", change, nil)
}

// Companies

func (c *Client) ListCompanies(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Company], error) {
	var out domain.Page[domain.Company]
	if err := c.getJSON(ctx, "/companies/", params.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCompany(ctx context.Context, id int64) (*domain.Company, error) {
	var out domain.Company
	if err := c.getJSON(ctx, fmt.Sprintf("/companies/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCompany(ctx context.Context, in domain.CompanyInput) (*domain.Company, error) {
	var out domain.Company
	if err := c.sendJSON(ctx, http.MethodPost, "/companies/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCompany(ctx context.Context, id int64, in domain.CompanyInput) (*domain.Company, error) {
	var out domain.Company
	if err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/companies/%d/", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListIndustries(ctx context.Context) ([]domain.Industry, error) {
	var out domain.Page[domain.Industry]
	if err := c.getJSON(ctx, "/companies/industries/", nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Reviews

func (c *Client) ListReviews(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Review], error) {
	var out domain.Page[domain.Review]
	if err := c.getJSON(ctx, "/reviews/reviews/", params.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReview(ctx context.Context, id int64) (*domain.Review, error) {
	var out domain.Review
	if err := c.getJSON(ctx, fmt.Sprintf("/reviews/reviews/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateReview(ctx context.Context, in domain.ReviewInput) (*domain.Review, error) {
	var out domain.Review
	if err := c.sendJSON(ctx, http.MethodPost, "/reviews/reviews/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateReview(ctx context.Context, id int64, in domain.ReviewInput) (*domain.Review, error) {
	var out domain.Review
	if err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/reviews/reviews/%d/", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteReview(ctx context.Context, id int64) error {
	_, err := c.Do(ctx, Call{Method: http.MethodDelete, Path: fmt.Sprintf("/reviews/reviews/%d/", id)})
	return err
}

func (c *Client) MarkReviewHelpful(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/reviews/reviews/%d/mark_helpful/", id), nil, nil)
}

// MyReviews lists the current user's reviews, including unmoderated ones
func (c *Client) MyReviews(ctx context.Context) ([]domain.Review, error) {
	var out domain.Page[domain.Review]
	if err := c.getJSON(ctx, "/reviews/reviews/my_reviews/", nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) UploadReviewImage(ctx context.Context, id int64, filename string, image io.Reader, caption string) (*domain.Image, error) {
	fields := map[string]string{}
	if caption != "" {
		fields["caption"] = caption
	}
	return c.upload(ctx, fmt.Sprintf("/reviews/reviews/%d/upload_image/", id), filename, image, fields)
}

// Comments

func (c *Client) ListComments(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Comment], error) {
	var out domain.Page[domain.Comment]
	if err := c.getJSON(ctx, "/reviews/comments/", params.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateComment(ctx context.Context, in domain.CommentInput) (*domain.Comment, error) {
	var out domain.Comment
	if err := c.sendJSON(ctx, http.MethodPost, "/reviews/comments/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListReplies(ctx context.Context, commentID int64) ([]domain.Comment, error) {
	var out domain.Page[domain.Comment]
	if err := c.getJSON(ctx, fmt.Sprintf("/reviews/comments/%d/replies/", commentID), nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) MarkCommentHelpful(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/reviews/comments/%d/mark_helpful/", id), nil, nil)
}

func (c *Client) UploadCommentImage(ctx context.Context, id int64, filename string, image io.Reader) (*domain.Image, error) {
	return c.upload(ctx, fmt.Sprintf("/reviews/comments/%d/upload_image/", id), filename, image, nil)
}

// Moderation

func (c *Client) PendingReviews(ctx context.Context) ([]domain.Review, error) {
	var out domain.Page[domain.Review]
	if err := c.getJSON(ctx, "/moderation/pending_reviews/", nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) PendingComments(ctx context.Context) ([]domain.Comment, error) {
	var out domain.Page[domain.Comment]
	if err := c.getJSON(ctx, "/moderation/pending_comments/", nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) ModerateReview(ctx context.Context, decision domain.ModerationDecision) error {
	return c.sendJSON(ctx, http.MethodPost, "/moderation/moderate_review/", decision, nil)
}

func (c *Client) ModerateComment(ctx context.Context, decision domain.ModerationDecision) error {
	return c.sendJSON(ctx, http.MethodPost, "/moderation/moderate_comment/", decision, nil)
}

func (c *Client) ModerationStatistics(ctx context.Context) (domain.ModerationStatistics, error) {
	var out domain.ModerationStatistics
	if err := c.getJSON(ctx, "/moderation/statistics/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Reports

func (c *Client) ListReports(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Report], error) {
	var out domain.Page[domain.Report]
	if err := c.getJSON(ctx, "/moderation/reports/", params.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateReport(ctx context.Context, in domain.ReportInput) (*domain.Report, error) {
	var out domain.Report
	if err := c.sendJSON(ctx, http.MethodPost, "/moderation/reports/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) HandleReport(ctx context.Context, id int64, resolution domain.ReportResolution) error {
	return c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/moderation/reports/%d/handle/", id), resolution, nil)
}

// upload sends a multipart form with one "image" file part
func (c *Client) upload(ctx context.Context, path, filename string, image io.Reader, fields map[string]string) (*domain.Image, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}
	part, err := form.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	resp, err := c.Do(ctx, Call{
		Method:      http.MethodPost,
		Path:        path,
		Body:        buf.Bytes(),
		ContentType: form.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}

	var out domain.Image
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
