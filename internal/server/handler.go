package server

import (
	"context"
	"net/url"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"parceldash/internal/query"
	"parceldash/internal/schema"
	"parceldash/internal/session"
	"parceldash/internal/types"
)

// Handler serves the dashboard API.
type Handler struct {
	sessions *session.Manager
	policy   session.MapPolicy
	// ready reports whether the datasets are available.
	ready func(ctx context.Context) error
}

func NewHandler(sessions *session.Manager, policy session.MapPolicy, ready func(ctx context.Context) error) *Handler {
	return &Handler{sessions: sessions, policy: policy, ready: ready}
}

func queryValues(c *app.RequestContext) url.Values {
	vals := url.Values{}
	c.QueryArgs().VisitAll(func(key, value []byte) {
		vals.Add(string(key), string(value))
	})
	return vals
}

func filterSpec(c *app.RequestContext) (query.FilterSpec, bool) {
	spec, err := query.FromValues(queryValues(c))
	if err != nil {
		ErrorResponse(c, err)
		return query.FilterSpec{}, false
	}
	return spec, true
}

func intParam(c *app.RequestContext, name string, def int) (int, error) {
	s := c.Query(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, types.NewInvalidParameter(name, s)
	}
	return v, nil
}

func sessionDTO(s *session.Session) SessionDTO {
	return SessionDTO{ID: s.ID, Variant: s.Variant().String(), Created: s.Created}
}

// CreateSession opens a session, optionally on the variant in the body.
func (h *Handler) CreateSession(ctx context.Context, c *app.RequestContext) {
	var req VariantRequest
	if len(c.Request.Body()) > 0 {
		if err := c.BindJSON(&req); err != nil {
			BadRequestResponse(c, "invalid request body")
			return
		}
	}
	var v types.Variant
	if req.Variant != "" {
		parsed, err := schema.Parse(req.Variant)
		if err != nil {
			ErrorResponse(c, err)
			return
		}
		v = parsed
	}
	s, err := h.sessions.Create(v)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	CreatedResponse(c, sessionDTO(s))
}

func (h *Handler) DeleteSession(ctx context.Context, c *app.RequestContext) {
	if !h.sessions.Delete(c.Param("id")) {
		c.JSON(consts.StatusNotFound, Response{Code: "SESSION_NOT_FOUND", Message: "session does not exist or was closed"})
		return
	}
	NoContentResponse(c)
}

func (h *Handler) GetVariant(ctx context.Context, c *app.RequestContext) {
	SuccessResponse(c, sessionDTO(currentSession(c)))
}

// PutVariant switches the dataset and drops the session's cached results.
func (h *Handler) PutVariant(ctx context.Context, c *app.RequestContext) {
	var req VariantRequest
	if err := c.BindJSON(&req); err != nil {
		BadRequestResponse(c, "invalid request body")
		return
	}
	v, err := schema.Parse(req.Variant)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	s := currentSession(c)
	if err := s.SwitchVariant(v); err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, sessionDTO(s))
}

// Records is the table view: the filtered set, paged with limit/offset.
func (h *Handler) Records(ctx context.Context, c *app.RequestContext) {
	spec, ok := filterSpec(c)
	if !ok {
		return
	}
	limit, err := intParam(c, "limit", 100)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	offset, err := intParam(c, "offset", 0)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	rs, err := currentSession(c).Filter(ctx, spec)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	start := min(offset, rs.Len())
	end := rs.Len()
	if limit > 0 && limit < rs.Len()-start {
		end = start + limit
	}
	SuccessResponse(c, ListResponse{
		Items:      toRecordDTOs(rs.Records[start:end], c.Query("include_fields") == "true"),
		TotalCount: rs.Len(),
	})
}

// Map returns placemarks of a deterministic sample of the filtered set.
func (h *Handler) Map(ctx context.Context, c *app.RequestContext) {
	spec, ok := filterSpec(c)
	if !ok {
		return
	}
	policy := h.policy
	if s := c.Query("sample"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || !(f > 0 && f <= 1) {
			ErrorResponse(c, types.NewInvalidParameter("sample", s))
			return
		}
		policy.Fraction = f
	}
	if s := c.Query("seed"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			ErrorResponse(c, types.NewInvalidParameter("seed", s))
			return
		}
		policy.Seed = seed
	}

	marks, err := currentSession(c).Map(ctx, spec, policy)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, ListResponse{Items: toPlacemarkDTOs(marks), TotalCount: len(marks)})
}

// Summary returns slider bounds for a numeric field, or the year span when
// field is "years".
func (h *Handler) Summary(ctx context.Context, c *app.RequestContext) {
	spec, ok := filterSpec(c)
	if !ok {
		return
	}
	name := c.Query("field")
	s := currentSession(c)

	if name == "years" {
		lo, hi, known, err := s.YearSpan(ctx, spec)
		if err != nil {
			ErrorResponse(c, err)
			return
		}
		SuccessResponse(c, BoundsDTO{Field: name, Min: lo, Max: hi, Known: known})
		return
	}

	f, ok := types.ParseField(name)
	if !ok {
		ErrorResponse(c, types.NewInvalidParameter("field", name))
		return
	}
	lo, hi, err := s.Bounds(ctx, spec, f)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, BoundsDTO{Field: name, Min: lo, Max: hi, Known: lo != 0 || hi != 0})
}

// Options lists select box values, "All" first.
func (h *Handler) Options(ctx context.Context, c *app.RequestContext) {
	name := c.Query("field")
	if name == "" {
		ErrorResponse(c, types.NewInvalidParameter("field", name))
		return
	}
	values, err := currentSession(c).Options(ctx, name)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, ListResponse{Items: values, TotalCount: len(values)})
}

func (h *Handler) Schema(ctx context.Context, c *app.RequestContext) {
	s := currentSession(c)
	rs, err := s.Records(ctx)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	cols := s.Columns()
	SuccessResponse(c, SchemaDTO{
		Variant:        cols.Variant.String(),
		OwnerColumn:    cols.Owner,
		LocalityColumn: cols.Locality,
		File:           cols.File,
		Columns:        rs.Columns,
	})
}

// Predicted is the predicted-buyers view over the reduced dataset.
func (h *Handler) Predicted(ctx context.Context, c *app.RequestContext) {
	typeCode := c.DefaultQuery("type", query.All)
	if typeCode != query.All {
		t, ok := query.ParseSubtype(typeCode)
		if !ok {
			ErrorResponse(c, types.NewInvalidParameter("type", typeCode))
			return
		}
		typeCode = t.Code()
	}
	rs, err := currentSession(c).Predicted(ctx, c.DefaultQuery("owner", query.All), typeCode)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, ListResponse{Items: toRecordDTOs(rs.Records, false), TotalCount: rs.Len()})
}

func (h *Handler) Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"status": "ok", "message": "pong"})
}

func (h *Handler) Liveness(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"status": "alive"})
}

func (h *Handler) Readiness(ctx context.Context, c *app.RequestContext) {
	if h.ready != nil {
		if err := h.ready(ctx); err != nil {
			c.JSON(consts.StatusServiceUnavailable, utils.H{"status": "not_ready", "error": err.Error()})
			return
		}
	}
	c.JSON(consts.StatusOK, utils.H{"status": "ready", "sessions": h.sessions.Len()})
}
