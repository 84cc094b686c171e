package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/internal/usecase"
)

const maxJSONBody = 1 << 20

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New(validator.WithRequiredStructEnabled())
		vld.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return vld
}

// decodeJSON reads a size-capped JSON body into dst and validates it. On
// failure the error response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeErrorStatus(w, http.StatusRequestEntityTooLarge, "payload too large", map[string]any{"max_bytes": mbe.Limit})
			return false
		}
		writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
		return false
	}
	if err := getValidator().Struct(dst); err != nil {
		verrs := map[string]string{}
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				verrs[fe.Field()] = fe.Tag()
			}
		}
		writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
		return false
	}
	return true
}

// pathID parses an integer URL parameter. Range checks are left to the
// usecases.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidArgument, name)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidArgument, name)
	}
	return v, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", domain.ErrInvalidArgument, name)
	}
	return v, nil
}

func jobFilterFrom(r *http.Request) domain.JobFilter {
	q := r.URL.Query()
	return domain.JobFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Location: strings.TrimSpace(q.Get("location")),
		Keyword:  strings.TrimSpace(q.Get("keyword")),
	}
}

// pageFrom parses page and limit with defaults of 1 and 10.
func pageFrom(r *http.Request) (domain.PageRequest, error) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		return domain.PageRequest{}, err
	}
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		return domain.PageRequest{}, err
	}
	req := domain.PageRequest{Page: page, Limit: limit}
	if err := usecase.ValidatePage(req); err != nil {
		return domain.PageRequest{}, err
	}
	return req, nil
}
