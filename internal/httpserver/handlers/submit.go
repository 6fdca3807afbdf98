package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/canireach/canireach/internal/domain"
	"github.com/canireach/canireach/internal/httpserver/deps"
	"github.com/canireach/canireach/internal/logger"
	redisstore "github.com/canireach/canireach/internal/store/redis"
	"github.com/canireach/canireach/internal/utils"
)

// maxSubmitBody bounds the request body; a full batch is under 2 KiB.
const maxSubmitBody = 64 << 10

type submitRequest struct {
	Results []domain.CheckResult `json:"results"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	ISP     string `json:"isp"`
	City    string `json:"city"`
	State   string `json:"state"`
}

// Submit is the single write entrypoint: validate, rate-limit by IP
// hash, enrich, persist the batch, announce it.
func Submit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req submitRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmitBody)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, ErrInvalidInput)
			return
		}
		if !validResults(req.Results) {
			writeError(w, http.StatusBadRequest, ErrInvalidInput)
			return
		}

		// The raw IP lives only inside this handler: it is hashed for
		// identity and passed to enrichment, never stored or echoed.
		ip := utils.SubmitterIP(r)
		ipHash := utils.HashIP(ip)

		ok, retryAfter, err := d.RateLimiter.Reserve(ctx, ipHash)
		if err != nil {
			d.Logger.Error("rate-limit reserve failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, ErrInternal)
			return
		}
		if !ok {
			secs := redisstore.RetryAfterSeconds(retryAfter)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Error:      ErrRateLimited,
				RetryAfter: secs,
			})
			return
		}

		// Best-effort enrichment; Lookup absorbs every failure mode.
		info := d.Geo.Lookup(ctx, ip)

		now := d.Now()
		rows := make([]domain.CheckRow, 0, len(req.Results))
		for _, res := range req.Results {
			rows = append(rows, domain.CheckRow{
				IPHash:         ipHash,
				ISP:            info.ISP,
				City:           info.City,
				State:          info.State,
				ServiceName:    res.ServiceName,
				ServiceURL:     res.ServiceURL,
				IsBlocked:      res.IsBlocked,
				ResponseTimeMs: res.ResponseTimeMs,
				CreatedAt:      now,
			})
		}

		if err := d.Store.InsertChecks(ctx, rows); err != nil {
			d.Logger.Error("failed to persist check batch",
				logger.Int("results", len(rows)),
				logger.Error(err))
			// Give the slot back so the submitter can retry. Losing this
			// release costs one early check, nothing more.
			if relErr := d.RateLimiter.Release(ctx, ipHash); relErr != nil {
				d.Logger.Warn("failed to release rate-limit slot", logger.Error(relErr))
			}
			writeError(w, http.StatusInternalServerError, ErrDatabase)
			return
		}

		if d.Publisher != nil {
			ev := domain.CheckBatchEvent{
				ISP:       info.ISP,
				Services:  len(rows),
				CreatedAt: now,
			}
			if err := d.Publisher.PublishCheckBatch(ctx, ev); err != nil {
				d.Logger.Warn("failed to publish check batch event", logger.Error(err))
			}
		}

		d.Logger.Info("check batch accepted",
			logger.Int("results", len(rows)),
			logger.String("isp", info.ISP))

		writeJSON(w, http.StatusOK, submitResponse{
			Success: true,
			ISP:     info.ISP,
			City:    info.City,
			State:   info.State,
		})
	}
}

func validResults(results []domain.CheckResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, res := range results {
		if strings.TrimSpace(res.ServiceName) == "" || strings.TrimSpace(res.ServiceURL) == "" {
			return false
		}
	}
	return true
}
