package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"somikra/internal/errors"
	"somikra/internal/observability"
	"somikra/internal/proxy"
	"somikra/internal/report"
	"somikra/internal/services"
	"somikra/internal/tools"
)

const maxToolBody = 64 << 10

type APIHandlers struct {
	sessions  *services.Sessions
	parser    *services.Parser
	fetcher   *proxy.Fetcher
	tools     *tools.Runner
	uploadMax int64
	logger    *slog.Logger
}

type Deps struct {
	Sessions  *services.Sessions
	Parser    *services.Parser
	Fetcher   *proxy.Fetcher
	Tools     *tools.Runner
	UploadMax int64
}

func NewAPIHandlers(deps Deps, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		sessions:  deps.Sessions,
		parser:    deps.Parser,
		fetcher:   deps.Fetcher,
		tools:     deps.Tools,
		uploadMax: deps.UploadMax,
		logger:    logger,
	}
}

func (h *APIHandlers) store(r *http.Request) *services.SaleStore {
	return h.sessions.Get(observability.GetSessionID(r.Context()))
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

type reportResponse struct {
	Report      report.Report          `json:"report"`
	Options     services.FilterOptions `json:"options"`
	RecordCount int                    `json:"record_count"`
}

func (h *APIHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	req, err := paramsFromQuery(r.URL.Query()).request()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	store := h.store(r)
	records := store.Snapshot()
	resp := reportResponse{
		Report:      report.Build(records, req),
		Options:     store.Options(),
		RecordCount: len(records),
	}

	errors.WriteSuccessWithHeaders(w, resp, map[string]string{"Cache-Control": "no-store"})
}

type uploadResponse struct {
	services.ParseResult
	Total    int  `json:"total"`
	Replaced bool `json:"replaced"`
}

func (h *APIHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(w, r, h.parser, h.uploadMax)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := uploadResponse{ParseResult: up.result, Replaced: up.replace}
	resp.Total = up.merge(h.store(r))

	up.log(r, h.logger, resp.Total)
	errors.WriteSuccess(w, resp)
}

type upload struct {
	filename string
	result   services.ParseResult
	replace  bool
}

// readUpload parses the multipart "file" field. Errors are *AppError values
// ready to be written. replace comes from the query string or a form field.
func readUpload(w http.ResponseWriter, r *http.Request, parser *services.Parser, max int64) (upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, max)
	if err := r.ParseMultipartForm(max); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return upload{}, errors.TooLarge("upload exceeds " + strconv.FormatInt(max, 10) + " bytes")
		}
		return upload{}, errors.BadRequestWrap(err, "expected a multipart form with a file field")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return upload{}, errors.BadRequestWrap(err, "missing file field")
	}
	defer file.Close()

	result, err := parser.ParseFile(r.Context(), header.Filename, file)
	if err != nil {
		return upload{}, uploadError(err)
	}

	replace, _ := strconv.ParseBool(r.FormValue("replace"))
	return upload{filename: header.Filename, result: result, replace: replace}, nil
}

func (u upload) merge(store *services.SaleStore) int {
	if u.replace {
		return store.Replace(u.result.Records)
	}
	return store.Append(u.result.Records)
}

func (u upload) log(r *http.Request, logger *slog.Logger, total int) {
	observability.LoggerFrom(r.Context(), logger).Info("sales uploaded",
		"file", u.filename,
		"valid", u.result.Valid,
		"dropped", u.result.Dropped,
		"replaced", u.replace,
		"total", total,
	)
}

func uploadError(err error) error {
	var missing *services.MissingColumnsError
	switch {
	case stderrors.As(err, &missing):
		return errors.ValidationWrap(err, missing.Error())
	case stderrors.Is(err, services.ErrNoValidRows):
		return errors.ValidationWrap(err, "no valid rows found: each row needs a date, product and customer")
	case stderrors.Is(err, services.ErrEmptyFile):
		return errors.ValidationWrap(err, "the uploaded file is empty")
	case stderrors.Is(err, services.ErrUnsupportedFormat):
		return errors.BadRequestWrap(err, "upload a .csv or .xlsx file")
	case stderrors.Is(err, context.Canceled):
		return errors.BadRequestWrap(err, "upload canceled")
	default:
		return errors.BadRequestWrap(err, "could not parse the uploaded file")
	}
}

func (h *APIHandlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	store := h.sessions.Reset(observability.GetSessionID(r.Context()))
	errors.WriteSuccess(w, map[string]int{"total": store.Len()})
}

func (h *APIHandlers) HandleSampleCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sample-sales.csv"`)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(services.SampleCSV())
}

func (h *APIHandlers) HandleFetchURL(w http.ResponseWriter, r *http.Request) {
	page, err := h.fetcher.Fetch(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	contentType := page.ContentType
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	if page.Truncated {
		w.Header().Set("X-Proxy-Truncated", "true")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page.Body)
}

func (h *APIHandlers) HandleTool(w http.ResponseWriter, r *http.Request) {
	var in tools.Input
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxToolBody))
	if err := dec.Decode(&in); err != nil {
		h.fail(w, r, errors.BadRequestWrap(err, "request body must be a JSON object of string fields"))
		return
	}

	result, err := h.tools.Run(r.Context(), r.PathValue("tool"), in)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
			err = errors.ServiceUnavailable("the tool did not finish in time")
		}
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccess(w, result)
}

func (h *APIHandlers) HandleTools(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]any{
		"tools":        h.tools.Names(),
		"report_types": report.ReportTypes(),
	})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.sessions.Stats())
}
