package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"

	"WooFeedSync/internal/feed"
	"WooFeedSync/internal/sync"
	"WooFeedSync/internal/version"
	"WooFeedSync/pkg/logging"
)

// Stopper persists a stop request for the running sync.
type Stopper interface {
	Set() error
}

type Handler struct {
	// ctx outlives requests; background syncs run under it.
	ctx     context.Context
	service *sync.Service
	stop    Stopper
	feed    func() (*feed.Sheet, error)
	rules   func() (*feed.Sheet, error)
}

func NewHandler(ctx context.Context, s *sync.Service, stop Stopper, feedSheet, rulesSheet func() (*feed.Sheet, error)) *Handler {
	return &Handler{ctx: ctx, service: s, stop: stop, feed: feedSheet, rules: rulesSheet}
}

// Router registers the control API.
func (h *Handler) Router() *httprouter.Router {
	router := httprouter.New()
	router.GET("/", h.HandlerOtherAll)
	router.POST("/sync", h.HandlerSync)
	router.POST("/sync/stop", h.HandlerSyncStop)
	router.GET("/sync/status", h.HandlerSyncStatus)
	router.GET("/stats", h.HandlerStats)
	router.POST("/categories/refresh", h.HandlerRefreshCategories)
	router.POST("/categories/create", h.HandlerCreateCategories)
	router.POST("/brands/refresh", h.HandlerRefreshBrands)
	return router
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.GetLogger().Errorf("failed to send response, error: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	logging.GetLogger().Error(err)
	writeJSON(w, code, ErrorResponse{Error: err.Error()})
}

func (h *Handler) HandlerOtherAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Debug("Start HandlerOtherAll")
	defer logger.Debug("End HandlerOtherAll")

	logger.Debug("Method\n\t", r.Method)
	logger.Debug("URL\n\t", r.URL)

	v := version.GetVersion()
	if _, err := fmt.Fprintf(w, "Version %s", v.String()); err != nil {
		logger.Errorf("failed to send response, error: %v", err)
	}
}

func selection(r *http.Request) (sync.Selection, error) {
	var sel sync.Selection
	var err error
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		if sel.From, err = strconv.Atoi(v); err != nil {
			return sel, errors.Wrap(err, "from")
		}
	}
	if v := q.Get("to"); v != "" {
		if sel.To, err = strconv.Atoi(v); err != nil {
			return sel, errors.Wrap(err, "to")
		}
	}
	return sel, nil
}

// HandlerSync starts a sync in the background; ?from=&to= bound the sheet lines.
func (h *Handler) HandlerSync(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerSync")
	defer logger.Info("End HandlerSync")

	sel, err := selection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sheet, err := h.feed()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := h.service.Start(h.ctx, sheet, sel); err != nil {
		if errors.Is(err, sync.ErrAlreadyRunning) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusAccepted, StatusResponse{State: string(sync.StateRunning)})
}

func (h *Handler) HandlerSyncStop(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerSyncStop")
	defer logger.Info("End HandlerSyncStop")

	if err := h.stop.Set(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{State: string(h.service.State())})
}

func (h *Handler) HandlerSyncStatus(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	resp := StatusResponse{State: string(h.service.State())}
	if last := h.service.LastReport(); last != nil {
		resp.Last = NewReportJSON(last)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandlerStats(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	sheet, err := h.feed()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	st := sync.SheetStats(sheet.Table)
	writeJSON(w, http.StatusOK, StatsJSON{Total: st.Total, Synced: st.Synced, Errors: st.Errors, Pending: st.Pending})
}

func (h *Handler) HandlerRefreshCategories(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerRefreshCategories")
	defer logger.Info("End HandlerRefreshCategories")

	cats, rs, err := h.service.RefreshCategories()
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, RefreshJSON{Categories: cats, Rules: rs})
}

func (h *Handler) HandlerRefreshBrands(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerRefreshBrands")
	defer logger.Info("End HandlerRefreshBrands")

	n, err := h.service.RefreshBrands()
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, RefreshJSON{Brands: n})
}

func (h *Handler) HandlerCreateCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := logging.GetLogger()
	logger.Info("Start HandlerCreateCategories")
	defer logger.Info("End HandlerCreateCategories")

	sheet, err := h.rules()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	rep, err := h.service.CreateAllCategories(r.Context(), sheet)
	if errors.Is(err, sync.ErrAlreadyRunning) {
		writeError(w, http.StatusConflict, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, CategoriesJSON{Created: rep.Created, Existing: rep.Existing, Errors: rep.Errors})
}
