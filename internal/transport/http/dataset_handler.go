// Package http provides the HTTP API for the analytics dataset.
package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"orderlens/internal/dataset"
	apierrors "orderlens/internal/errors"
	"orderlens/internal/exporter"
	"orderlens/internal/services"
	"orderlens/pkg/contracts/domain"
)

const dateLayout = "2006-01-02"

// DatasetHandler serves the dataset, query, and export endpoints.
type DatasetHandler struct {
	service  *services.DataService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewDatasetHandler creates the dataset handler.
func NewDatasetHandler(service *services.DataService, logger *slog.Logger) *DatasetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetHandler{
		service:  service,
		logger:   logger,
		validate: validator.New(),
	}
}

// Routes returns the router for dataset endpoints.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetDataset)
	r.Post("/query", h.Query)
	r.Post("/refresh", h.Refresh)
	return r
}

// QueryRequest restricts the dataset to a row subset before rederiving
// population metrics. Dates are inclusive calendar days.
type QueryRequest struct {
	From        string   `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To          string   `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Channels    []string `json:"channels" validate:"omitempty,dive,required"`
	Sellers     []string `json:"sellers" validate:"omitempty,dive,required"`
	MemberTypes []string `json:"member_types" validate:"omitempty,dive,required"`
	Weights     []string `json:"weights" validate:"omitempty,dive,required"`
	Grades      []string `json:"grades" validate:"omitempty,dive,required"`
	Regions     []string `json:"regions" validate:"omitempty,dive,required"`
	Segments    []string `json:"segments" validate:"omitempty,dive,required"`

	IncludeLines    bool `json:"include_lines"`
	IncludeProfiles bool `json:"include_profiles"`
	IncludeProducts bool `json:"include_products"`
}

// DatasetSummary is the lightweight view of a derivation result.
type DatasetSummary struct {
	Signature            string              `json:"signature"`
	LoadedAt             time.Time           `json:"loaded_at"`
	SourceFiles          []string            `json:"source_files"`
	Capabilities         domain.Capabilities `json:"capabilities"`
	ReferenceDate        time.Time           `json:"reference_date"`
	MeanPurchaseInterval float64             `json:"mean_purchase_interval"`
	LineCount            int                 `json:"line_count"`
	CustomerCount        int                 `json:"customer_count"`
	ProductCount         int                 `json:"product_count"`
	TotalRevenue         float64             `json:"total_revenue"`
	TotalGrossProfit     float64             `json:"total_gross_profit"`
}

// QueryResponse carries the summary plus whichever tables the request
// asked for.
type QueryResponse struct {
	Summary  DatasetSummary             `json:"summary"`
	Lines    []domain.EnrichedOrderLine `json:"lines,omitempty"`
	Profiles []domain.CustomerProfile   `json:"profiles,omitempty"`
	Products []domain.ProductStats      `json:"products,omitempty"`
}

func summarize(ds *domain.Dataset) DatasetSummary {
	s := DatasetSummary{
		Signature:            ds.Signature,
		LoadedAt:             ds.LoadedAt,
		SourceFiles:          ds.SourceFiles,
		Capabilities:         ds.Capabilities,
		ReferenceDate:        ds.ReferenceDate,
		MeanPurchaseInterval: ds.MeanPurchaseInterval,
		LineCount:            len(ds.Lines),
		CustomerCount:        len(ds.Profiles),
		ProductCount:         len(ds.Products),
	}
	for _, line := range ds.Lines {
		s.TotalRevenue += line.NetRevenue
		s.TotalGrossProfit += line.GrossProfit
	}
	return s
}

// GetDataset returns the current dataset summary, loading or rebuilding
// as needed. An empty source directory yields a zero-count summary, not
// an error. ?include_lines=true attaches the full enriched table.
func (h *DatasetHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.Dataset(r.Context())
	if err != nil {
		apierrors.HandleError(w, r, h.logger, apierrors.PipelineError(err))
		return
	}

	if r.URL.Query().Get("include_lines") == "true" {
		render.JSON(w, r, QueryResponse{Summary: summarize(ds), Lines: ds.Lines})
		return
	}

	render.JSON(w, r, summarize(ds))
}

// Query returns a filtered view with population metrics rederived over
// the subset.
func (h *DatasetHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		apierrors.HandleError(w, r, h.logger, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		apierrors.HandleError(w, r, h.logger, apierrors.InvalidRequestWithError(err))
		return
	}

	filter, err := req.toFilter()
	if err != nil {
		apierrors.HandleError(w, r, h.logger, err)
		return
	}

	ds, err := h.service.Query(r.Context(), filter)
	if err != nil {
		apierrors.HandleError(w, r, h.logger, apierrors.PipelineError(err))
		return
	}

	resp := QueryResponse{Summary: summarize(ds)}
	if req.IncludeLines {
		resp.Lines = ds.Lines
	}
	if req.IncludeProfiles {
		resp.Profiles = ds.Profiles
	}
	if req.IncludeProducts {
		resp.Products = ds.Products
	}

	render.JSON(w, r, resp)
}

// Refresh forces a full rebuild and returns the fresh summary.
func (h *DatasetHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.Refresh(r.Context())
	if err != nil {
		apierrors.HandleError(w, r, h.logger, apierrors.PipelineError(err))
		return
	}

	render.JSON(w, r, summarize(ds))
}

// Customers returns the per-customer profiles of the current dataset.
func (h *DatasetHandler) Customers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.Customers(r.Context())
	if err != nil {
		apierrors.HandleError(w, r, h.logger, apierrors.PipelineError(err))
		return
	}

	render.JSON(w, r, profiles)
}

// Products returns the per-product aggregates of the current dataset.
func (h *DatasetHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Products(r.Context())
	if err != nil {
		apierrors.HandleError(w, r, h.logger, apierrors.PipelineError(err))
		return
	}

	render.JSON(w, r, products)
}

// Export streams the enriched table as a CSV download, restricted by the
// same filter fields the query endpoint accepts, passed as query
// parameters (repeatable for the categorical fields). The encoding
// parameter selects euc-kr (default) or utf-8-bom.
func (h *DatasetHandler) Export(w http.ResponseWriter, r *http.Request) {
	enc := exporter.EncodingEUCKR
	switch r.URL.Query().Get("encoding") {
	case "", string(exporter.EncodingEUCKR):
	case string(exporter.EncodingUTF8BOM):
		enc = exporter.EncodingUTF8BOM
	default:
		apierrors.HandleError(w, r, h.logger,
			apierrors.ErrValidation("encoding", "must be euc-kr or utf-8-bom"))
		return
	}

	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		apierrors.HandleError(w, r, h.logger, err)
		return
	}

	ds, err := h.service.Query(r.Context(), filter)
	if err != nil {
		apierrors.HandleError(w, r, h.logger, apierrors.PipelineError(err))
		return
	}
	if ds.Empty() {
		apierrors.HandleError(w, r, h.logger, apierrors.ErrNoData)
		return
	}

	filename := exporter.ExportFilename(time.Now())
	w.Header().Set("Content-Type", "text/csv; charset="+charsetFor(enc))
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.service.WriteCSV(r.Context(), w, enc, ds); err != nil {
		// Headers are already gone; all we can do is log.
		h.logger.ErrorContext(r.Context(), "export stream failed",
			slog.String("error", err.Error()))
	}
}

func charsetFor(enc exporter.Encoding) string {
	if enc == exporter.EncodingEUCKR {
		return "euc-kr"
	}
	return "utf-8"
}

// filterFromQuery maps URL query parameters onto the row filter so CSV
// downloads select the same subsets as POST queries.
func filterFromQuery(q url.Values) (dataset.Filter, error) {
	req := QueryRequest{
		From:        q.Get("from"),
		To:          q.Get("to"),
		Channels:    q["channels"],
		Sellers:     q["sellers"],
		MemberTypes: q["member_types"],
		Weights:     q["weights"],
		Grades:      q["grades"],
		Regions:     q["regions"],
		Segments:    q["segments"],
	}
	return req.toFilter()
}

func (r *QueryRequest) toFilter() (dataset.Filter, error) {
	var f dataset.Filter

	if r.From != "" {
		t, err := time.Parse(dateLayout, r.From)
		if err != nil {
			return f, apierrors.ErrValidation("from", "must be a YYYY-MM-DD date")
		}
		f.From = t
	}
	if r.To != "" {
		t, err := time.Parse(dateLayout, r.To)
		if err != nil {
			return f, apierrors.ErrValidation("to", "must be a YYYY-MM-DD date")
		}
		// Inclusive day bound: extend to the last instant of the day so
		// timestamped orders on the boundary date match.
		f.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, apierrors.ErrValidation("to", "must not precede from")
	}

	f.Channels = r.Channels
	f.Sellers = r.Sellers
	f.MemberTypes = r.MemberTypes
	f.Weights = r.Weights
	f.Grades = r.Grades
	f.Regions = r.Regions
	f.Segments = r.Segments

	return f, nil
}
