package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/deal-pipeline/internal/middleware"
	"github.com/iliyamo/deal-pipeline/internal/model"
	"github.com/iliyamo/deal-pipeline/internal/queue"
	"github.com/iliyamo/deal-pipeline/internal/repository"
	"github.com/iliyamo/deal-pipeline/internal/service"
)

// DealHandler exposes the thin CRUD surface over the deal board. Stage
// values are validated against the fixed enumeration; there are no
// transition rules between stages.
type DealHandler struct {
	Deals *repository.DealRepo
}

func NewDealHandler(deals *repository.DealRepo) *DealHandler {
	return &DealHandler{Deals: deals}
}

type dealReq struct {
	Name       string   `json:"name"`
	CompanyURL *string  `json:"company_url,omitempty"`
	Owner      string   `json:"owner"`
	Stage      string   `json:"stage,omitempty"`
	Round      *string  `json:"round,omitempty"`
	CheckSize  *float64 `json:"check_size,omitempty"`
	Status     string   `json:"status,omitempty"`
}
type stageReq struct {
	Stage string `json:"stage"`
}

type dealPart struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	CompanyURL *string   `json:"company_url,omitempty"`
	Owner      string    `json:"owner"`
	Stage      string    `json:"stage"`
	Round      *string   `json:"round,omitempty"`
	CheckSize  *float64  `json:"check_size,omitempty"`
	Status     string    `json:"status"`
	CreatedBy  uint64    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toDealPart(d model.Deal) dealPart {
	return dealPart{
		ID:         d.ID,
		Name:       d.Name,
		CompanyURL: d.CompanyURL,
		Owner:      d.Owner,
		Stage:      d.Stage,
		Round:      d.Round,
		CheckSize:  d.CheckSize,
		Status:     d.Status,
		CreatedBy:  d.CreatedBy,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// List returns deals, optionally filtered with ?stage=, paginated with
// ?offset and ?limit.
func (h *DealHandler) List(c echo.Context) error {
	stage := c.QueryParam("stage")
	if stage != "" && !model.ValidStage(stage) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown stage"})
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	deals, err := h.Deals.List(ctx, stage, offset, limit)
	if err != nil {
		return writeErr(c, err)
	}
	out := make([]dealPart, 0, len(deals))
	for _, d := range deals {
		out = append(out, toDealPart(d))
	}
	return c.JSON(http.StatusOK, out)
}

// PipelineSummary returns the deal count per stage for the board header.
// Stages without deals report zero so every column renders.
func (h *DealHandler) PipelineSummary(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	counts, err := h.Deals.StageCounts(ctx)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, counts)
}

// Get returns one deal by id.
func (h *DealHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid deal id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Deals.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "deal not found"})
	}
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, toDealPart(d))
}

// Create adds a deal to the board. The stage defaults to Sourced and the
// status to active.
func (h *DealHandler) Create(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req dealReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || strings.TrimSpace(req.Owner) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and owner required"})
	}
	if req.Stage == "" {
		req.Stage = model.StageSourced
	}
	if !model.ValidStage(req.Stage) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown stage"})
	}
	if req.Status == "" {
		req.Status = "active"
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d := model.Deal{
		Name:       req.Name,
		CompanyURL: req.CompanyURL,
		Owner:      strings.TrimSpace(req.Owner),
		Stage:      req.Stage,
		Round:      req.Round,
		CheckSize:  req.CheckSize,
		Status:     req.Status,
		CreatedBy:  u.ID,
	}
	if err := h.Deals.Create(ctx, &d); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, toDealPart(d))
}

// Update rewrites the editable fields of a deal. The stage is changed
// through UpdateStage only, so every move is published to the audit queue.
func (h *DealHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid deal id"})
	}
	var req dealReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Deals.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "deal not found"})
	}
	if err != nil {
		return writeErr(c, err)
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		d.Name = name
	}
	if req.CompanyURL != nil {
		d.CompanyURL = req.CompanyURL
	}
	if owner := strings.TrimSpace(req.Owner); owner != "" {
		d.Owner = owner
	}
	if req.Round != nil {
		d.Round = req.Round
	}
	if req.CheckSize != nil {
		d.CheckSize = req.CheckSize
	}
	if req.Status != "" {
		d.Status = req.Status
	}

	if err := h.Deals.Update(ctx, d); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, toDealPart(d))
}

// UpdateStage moves a deal to another pipeline stage and publishes the
// move to the audit queue.
func (h *DealHandler) UpdateStage(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid deal id"})
	}
	var req stageReq
	if err := c.Bind(&req); err != nil || !model.ValidStage(req.Stage) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown stage"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Deals.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "deal not found"})
	}
	if err != nil {
		return writeErr(c, err)
	}

	from := d.Stage
	if err := h.Deals.UpdateStage(ctx, id, req.Stage); err != nil {
		return writeErr(c, err)
	}
	d.Stage = req.Stage

	// Best effort; a broker outage must not fail the move.
	_ = service.PublishDealStageChanged(ctx, queue.DealStageChangedEvent{
		DealID:    d.ID,
		DealName:  d.Name,
		FromStage: from,
		ToStage:   req.Stage,
		ChangedBy: u.ID,
		ChangedAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, toDealPart(d))
}

// Delete removes a deal from the board.
func (h *DealHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid deal id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Deals.GetByID(ctx, id); errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "deal not found"})
	} else if err != nil {
		return writeErr(c, err)
	}
	if err := h.Deals.Delete(ctx, id); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
