package server

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	planner "github.com/tidyplan/plannerd/internal"
)

// maxBodyBytes bounds request payloads; the largest legal document
// (an event with attendees) is well under this.
const maxBodyBytes = 1 << 20

// queryFilter extracts the filterable fields present in the query string.
// Has() distinguishes an absent parameter from one set to the empty string,
// so ?title= matches horizons whose title is actually empty.
func queryFilter(q url.Values, rt planner.ResourceType) planner.Filter {
	var f planner.Filter
	for _, field := range planner.FilterFields(rt) {
		if q.Has(field) {
			if f == nil {
				f = planner.Filter{}
			}
			f[field] = q.Get(field)
		}
	}
	return f
}

// queryPage parses limit and skip. Absent parameters fall back to the
// defaults applied by Page.Normalize.
func queryPage(q url.Values) (planner.Page, error) {
	var page planner.Page
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page, fmt.Errorf("%w: limit must be a non-negative integer", planner.ErrInvalidInput)
		}
		page.Limit = n
	}
	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page, fmt.Errorf("%w: skip must be a non-negative integer", planner.ErrInvalidInput)
		}
		page.Skip = n
	}
	return page, nil
}

func queryFresh(q url.Values) bool {
	return q.Get("fresh") == "true"
}

// readBody reads and validates a JSON request body. gjson field-presence
// checks on the raw bytes let update handlers distinguish a field set to
// its zero value from one omitted entirely.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", planner.ErrInvalidInput, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", planner.ErrInvalidInput)
	}
	return body, nil
}

// strField returns a pointer to the string value of a JSON field, or nil
// when the field is absent from the body.
func strField(body []byte, path string) *string {
	res := gjson.GetBytes(body, path)
	if !res.Exists() {
		return nil
	}
	v := res.String()
	return &v
}
