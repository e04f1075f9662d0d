package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/deal-pipeline/internal/middleware"
	"github.com/iliyamo/deal-pipeline/internal/model"
	"github.com/iliyamo/deal-pipeline/internal/repository"
)

// MemoHandler exposes the investment-committee memo attached to a deal.
// A deal carries at most one memo; each save bumps the version and keeps a
// full snapshot, so the evaluation history is never lost.
type MemoHandler struct {
	Deals *repository.DealRepo
	Memos *repository.MemoRepo
}

func NewMemoHandler(deals *repository.DealRepo, memos *repository.MemoRepo) *MemoHandler {
	return &MemoHandler{Deals: deals, Memos: memos}
}

type memoReq struct {
	Summary       *string `json:"summary,omitempty"`
	Market        *string `json:"market,omitempty"`
	Product       *string `json:"product,omitempty"`
	Traction      *string `json:"traction,omitempty"`
	Risks         *string `json:"risks,omitempty"`
	OpenQuestions *string `json:"open_questions,omitempty"`
	ChangeSummary *string `json:"change_summary,omitempty"`
}

type memoPart struct {
	ID             uint64    `json:"id"`
	DealID         uint64    `json:"deal_id"`
	CreatedBy      uint64    `json:"created_by"`
	LastUpdatedBy  uint64    `json:"last_updated_by"`
	CurrentVersion int       `json:"current_version"`
	Summary        *string   `json:"summary"`
	Market         *string   `json:"market"`
	Product        *string   `json:"product"`
	Traction       *string   `json:"traction"`
	Risks          *string   `json:"risks"`
	OpenQuestions  *string   `json:"open_questions"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type memoVersionPart struct {
	ID            uint64    `json:"id"`
	MemoID        uint64    `json:"memo_id"`
	DealID        uint64    `json:"deal_id"`
	VersionNumber int       `json:"version_number"`
	CreatedBy     uint64    `json:"created_by"`
	Summary       *string   `json:"summary"`
	Market        *string   `json:"market"`
	Product       *string   `json:"product"`
	Traction      *string   `json:"traction"`
	Risks         *string   `json:"risks"`
	OpenQuestions *string   `json:"open_questions"`
	ChangeSummary *string   `json:"change_summary"`
	CreatedAt     time.Time `json:"created_at"`
}

func toMemoPart(m model.Memo) memoPart {
	return memoPart{
		ID:             m.ID,
		DealID:         m.DealID,
		CreatedBy:      m.CreatedBy,
		LastUpdatedBy:  m.LastUpdatedBy,
		CurrentVersion: m.CurrentVersion,
		Summary:        m.Summary,
		Market:         m.Market,
		Product:        m.Product,
		Traction:       m.Traction,
		Risks:          m.Risks,
		OpenQuestions:  m.OpenQuestions,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toMemoVersionPart(v model.MemoVersion) memoVersionPart {
	return memoVersionPart{
		ID:            v.ID,
		MemoID:        v.MemoID,
		DealID:        v.DealID,
		VersionNumber: v.VersionNumber,
		CreatedBy:     v.CreatedBy,
		Summary:       v.Summary,
		Market:        v.Market,
		Product:       v.Product,
		Traction:      v.Traction,
		Risks:         v.Risks,
		OpenQuestions: v.OpenQuestions,
		ChangeSummary: v.ChangeSummary,
		CreatedAt:     v.CreatedAt,
	}
}

// memoForDeal resolves the deal id from the path and loads its memo. Both
// lookups 404 independently so a client can tell a missing deal from a deal
// without a memo yet.
func (h *MemoHandler) memoForDeal(c echo.Context) (model.Memo, bool) {
	dealID, err := pathID(c)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid deal id"})
		return model.Memo{}, false
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Deals.GetByID(ctx, dealID); errors.Is(err, repository.ErrNotFound) {
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "deal not found"})
		return model.Memo{}, false
	} else if err != nil {
		_ = writeErr(c, err)
		return model.Memo{}, false
	}

	m, err := h.Memos.GetByDealID(ctx, dealID)
	if errors.Is(err, repository.ErrNotFound) {
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "no memo for this deal"})
		return model.Memo{}, false
	}
	if err != nil {
		_ = writeErr(c, err)
		return model.Memo{}, false
	}
	return m, true
}

// Save creates the memo on first write and a new version on every later
// one. Previous content stays available through the version endpoints.
func (h *MemoHandler) Save(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	dealID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid deal id"})
	}
	var req memoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Deals.GetByID(ctx, dealID); errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "deal not found"})
	} else if err != nil {
		return writeErr(c, err)
	}

	m := model.Memo{
		DealID:        dealID,
		CreatedBy:     u.ID,
		LastUpdatedBy: u.ID,
		Summary:       req.Summary,
		Market:        req.Market,
		Product:       req.Product,
		Traction:      req.Traction,
		Risks:         req.Risks,
		OpenQuestions: req.OpenQuestions,
	}
	if err := h.Memos.Save(ctx, &m, req.ChangeSummary); err != nil {
		return writeErr(c, err)
	}

	// Re-read so the response carries the database-assigned timestamps.
	saved, err := h.Memos.GetByDealID(ctx, dealID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, toMemoPart(saved))
}

// Get returns the current memo for a deal.
func (h *MemoHandler) Get(c echo.Context) error {
	m, ok := h.memoForDeal(c)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, toMemoPart(m))
}

// History returns every version of a deal's memo, latest first.
func (h *MemoHandler) History(c echo.Context) error {
	m, ok := h.memoForDeal(c)
	if !ok {
		return nil
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	versions, err := h.Memos.ListVersions(ctx, m.ID)
	if err != nil {
		return writeErr(c, err)
	}
	out := make([]memoVersionPart, 0, len(versions))
	for _, v := range versions {
		out = append(out, toMemoVersionPart(v))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_versions": len(out),
		"versions":       out,
	})
}

// GetVersion returns one read-only snapshot of a deal's memo.
func (h *MemoHandler) GetVersion(c echo.Context) error {
	num, err := strconv.Atoi(c.Param("version"))
	if err != nil || num < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid version number"})
	}

	m, ok := h.memoForDeal(c)
	if !ok {
		return nil
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Memos.GetVersion(ctx, m.ID, num)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "memo version not found"})
	}
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, toMemoVersionPart(v))
}
