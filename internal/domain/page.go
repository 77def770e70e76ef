package domain

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// Page is the paginated list envelope used by list endpoints
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// UnmarshalJSON accepts both the paginated envelope and a bare JSON array,
// since some backend actions return unpaginated lists.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*p = Page[T]{Count: len(items), Results: items}
		return nil
	}
	var e pageEnvelope[T]
	if err := json.Unmarshal(data, &e); err != nil {
		return err
	}
	*p = Page[T](e)
	return nil
}

// pageEnvelope has Page's fields without its UnmarshalJSON method
type pageEnvelope[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// ListParams are query parameters for list endpoints. Zero values are omitted.
type ListParams struct {
	Page     int
	PageSize int
	Search   string
	Ordering string
	Filters  map[string]string
}

// Values encodes the params as a query string
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Ordering != "" {
		v.Set("ordering", p.Ordering)
	}
	for k, val := range p.Filters {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}
