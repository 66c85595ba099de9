package api

import (
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/ivlev/price2video/internal/engine"
	"github.com/ivlev/price2video/internal/recorder"
)

const (
	defaultJobsLimit = 20
	maxJobsLimit     = 200
)

func RenderHandler(svcCtx *ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RenderRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.WriteJsonCtx(r.Context(), w, http.StatusBadRequest, ErrorResponse{
				Kind:    string(engine.KindValidation),
				Stage:   string(engine.StageValidate),
				Message: err.Error(),
			})
			return
		}

		res, err := svcCtx.Renderer.Run(r.Context(), engine.Request{
			Title:      req.Title,
			TargetDate: req.TargetDate,
			Category:   req.Category,
		}, nil)
		if err != nil {
			writeError(w, r, err)
			return
		}

		httpx.OkJsonCtx(r.Context(), w, RenderResponse{
			JobID:           res.JobID,
			OutputPath:      res.OutputPath,
			RecordCount:     res.RecordCount,
			DurationSeconds: res.DurationSeconds,
			Timestamp:       res.Timestamp.Format(time.RFC3339),
		})
	}
}

func JobsHandler(svcCtx *ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JobsRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.WriteJsonCtx(r.Context(), w, http.StatusBadRequest, ErrorResponse{Kind: string(engine.KindValidation), Message: err.Error()})
			return
		}
		limit := req.Limit
		if limit <= 0 {
			limit = defaultJobsLimit
		}
		if limit > maxJobsLimit {
			limit = maxJobsLimit
		}

		jobs, err := svcCtx.Recorder.Recent(r.Context(), limit)
		if err != nil {
			logx.WithContext(r.Context()).Errorf("list jobs: %v", err)
			httpx.WriteJsonCtx(r.Context(), w, http.StatusInternalServerError, ErrorResponse{Kind: string(engine.KindIO), Message: err.Error()})
			return
		}
		if jobs == nil {
			jobs = []recorder.JobRecord{}
		}
		httpx.OkJsonCtx(r.Context(), w, JobsResponse{Jobs: jobs})
	}
}

func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.OkJsonCtx(r.Context(), w, HealthResponse{Status: "ok"})
	}
}

// writeError maps client-caused failures to 4xx and everything else to 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := engine.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case engine.KindValidation:
		status = http.StatusBadRequest
	case engine.KindNoData:
		status = http.StatusNotFound
	case "":
		kind = "InternalError"
	}
	if status == http.StatusInternalServerError {
		logx.WithContext(r.Context()).Errorf("render request failed: %v", err)
	}
	httpx.WriteJsonCtx(r.Context(), w, status, ErrorResponse{
		Kind:    string(kind),
		Stage:   string(engine.StageOf(err)),
		Message: err.Error(),
	})
}
