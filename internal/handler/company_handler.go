package handler

import (
	"net/http"
	"strconv"
	"strings"

	"welfarewatch-web/internal/domain"
)

const (
	companiesPageSize = 12
	reviewsPageSize   = 10
)

type homeData struct {
	Companies []domain.Company
	Reviews   []domain.Review
}

type companiesData struct {
	Search     string
	Industry   string
	Industries []domain.Industry
	Page       int
	Result     *domain.Page[domain.Company]
}

type companyData struct {
	Company *domain.Company
	Page    int
	Reviews *domain.Page[domain.Review]
}

// Home shows top companies and the latest reviews
func (v *Views) Home(w http.ResponseWriter, r *http.Request) {
	companies, err := v.backend.ListCompanies(r.Context(), domain.ListParams{PageSize: 6, Ordering: "-average_rating"})
	if err != nil {
		v.fail(w, r, err)
		return
	}
	reviews, err := v.backend.ListReviews(r.Context(), domain.ListParams{PageSize: 5, Ordering: "-created_at"})
	if err != nil {
		v.fail(w, r, err)
		return
	}

	v.render(w, r, http.StatusOK, "home", homeData{Companies: companies.Results, Reviews: reviews.Results}, "")
}

// Companies lists companies with search and industry filter
func (v *Views) Companies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := companiesData{
		Search:   strings.TrimSpace(q.Get("search")),
		Industry: q.Get("industry"),
		Page:     pageParam(r),
	}

	params := domain.ListParams{Page: data.Page, PageSize: companiesPageSize, Search: data.Search}
	if _, err := strconv.ParseInt(data.Industry, 10, 64); err == nil {
		params.Filters = map[string]string{"industry": data.Industry}
	}

	result, err := v.backend.ListCompanies(r.Context(), params)
	if err != nil {
		v.fail(w, r, err)
		return
	}
	data.Result = result

	industries, err := v.backend.ListIndustries(r.Context())
	if err != nil {
		v.fail(w, r, err)
		return
	}
	data.Industries = industries

	v.render(w, r, http.StatusOK, "companies", data, "")
}

// Company shows one company and its reviews
func (v *Views) Company(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		v.notFound(w, r)
		return
	}

	company, err := v.backend.GetCompany(r.Context(), id)
	if err != nil {
		v.fail(w, r, err)
		return
	}

	page := pageParam(r)
	reviews, err := v.backend.ListReviews(r.Context(), domain.ListParams{
		Page:     page,
		PageSize: reviewsPageSize,
		Ordering: "-created_at",
		Filters:  map[string]string{"company": strconv.FormatInt(id, 10)},
	})
	if err != nil {
		v.fail(w, r, err)
		return
	}

	v.render(w, r, http.StatusOK, "company", companyData{Company: company, Page: page, Reviews: reviews}, "")
}
