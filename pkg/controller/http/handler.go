package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
	"github.com/secmon-lab/tasklens/pkg/usecase"
	"github.com/secmon-lab/tasklens/pkg/utils/errutil"
)

type askRequest struct {
	Question string `json:"question"`
}

func askHandler(uc QueryUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}

		result, err := uc.Ask(r.Context(), req.Question)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
			return
		}
		writeJSON(r.Context(), w, result)
	}
}

func personHandler(uc QueryUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		pq := usecase.PersonQuery{Name: chi.URLParam(r, "name")}

		if v := q.Get("recent"); v != "" {
			recent, err := strconv.ParseBool(v)
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid recent parameter", goerr.V("recent", v)), http.StatusBadRequest)
				return
			}
			pq.Recent = recent
		}
		if v := q.Get("status"); v != "" {
			status, err := types.ParseActionStatus(v)
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
				return
			}
			pq.Status = status
		}
		if v := q.Get("limit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil || limit < 0 {
				errutil.HandleHTTP(r.Context(), w, goerr.New("invalid limit parameter", goerr.V("limit", v)), http.StatusBadRequest)
				return
			}
			pq.Limit = limit
		}

		result, err := uc.QueryPerson(r.Context(), pq)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
			return
		}
		writeJSON(r.Context(), w, result)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, map[string]string{"status": "ok"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, model.ErrQueryTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, model.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrValidationRejected):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data) //nolint:errcheck // header already committed
}
