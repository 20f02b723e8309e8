package handler

import (
	"net/http"

	"github.com/mpancino/myassetplace/internal/ledger"
	"github.com/mpancino/myassetplace/internal/models"
	"github.com/mpancino/myassetplace/internal/session"
	"github.com/mpancino/myassetplace/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemHandler serves line-item operations on an asset's ledger. Every
// mutation goes through the asset's editing session: the form state machine
// stages the fields, commit validates and applies them, and the persisted
// snapshot catches up asynchronously.
type ItemHandler struct {
	DB       *gorm.DB
	Sessions *session.Manager
}

func NewItemHandler(db *gorm.DB, sessions *session.Manager) *ItemHandler {
	return &ItemHandler{DB: db, Sessions: sessions}
}

type itemReq struct {
	CategoryID string `json:"category_id"`
	Label      string `json:"label"`
	Amount     string `json:"amount"`
	Frequency  string `json:"frequency"`
}

type itemResp struct {
	ID          string `json:"id"`
	CategoryID  string `json:"category_id"`
	Label       string `json:"label"`
	Amount      string `json:"amount"`
	Frequency   string `json:"frequency"`
	AnnualTotal string `json:"annual_total"`
}

func toItemResp(it ledger.LineItem) itemResp {
	return itemResp{
		ID:          it.ID,
		CategoryID:  it.CategoryID,
		Label:       it.Label,
		Amount:      it.Amount.String(),
		Frequency:   string(it.Frequency),
		AnnualTotal: it.AnnualTotal.String(),
	}
}

func toItemResps(items []ledger.LineItem) []itemResp {
	out := make([]itemResp, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResp(it))
	}
	return out
}

// ownSession resolves the asset (checking ownership) and its session.
func (h *ItemHandler) ownSession(c *gin.Context) (*models.Asset, *session.Session, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, nil, false
	}

	id := c.Param("id")
	var asset models.Asset
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&asset).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "asset not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return nil, nil, false
	}

	sess, err := h.Sessions.Get(c.Request.Context(), asset.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "load ledger failed")
		return nil, nil, false
	}
	return &asset, sess, true
}

// stage pushes the request fields into the editor. Only non-empty fields are
// staged on edit so a partial body patches rather than clears.
func stage(sess *session.Session, req itemReq, partial bool) error {
	fields := map[string]string{
		"category_id": req.CategoryID,
		"label":       req.Label,
		"amount":      req.Amount,
		"frequency":   req.Frequency,
	}
	for key, value := range fields {
		if partial && value == "" {
			continue
		}
		if err := sess.SetField(key, value); err != nil {
			return err
		}
	}
	return nil
}

// CreateItem stages and commits a new line item. The response carries the
// optimistic snapshot; persistence completes in the background.
func (h *ItemHandler) CreateItem(c *gin.Context) {
	_, sess, ok := h.ownSession(c)
	if !ok {
		return
	}

	var req itemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	if err := sess.BeginAdd(); err != nil {
		ledgerError(c, err)
		return
	}
	if err := stage(sess, req, false); err != nil {
		sess.Cancel()
		ledgerError(c, err)
		return
	}
	item, err := sess.Commit(c.Request.Context())
	if err != nil {
		sess.Cancel()
		ledgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"item":  toItemResp(item),
		"items": toItemResps(sess.Items()),
		"total": sess.Total().String(),
	})
}

// UpdateItem stages and commits an edit of an existing item.
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	_, sess, ok := h.ownSession(c)
	if !ok {
		return
	}

	var req itemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	if err := sess.BeginEdit(c.Param("itemID")); err != nil {
		ledgerError(c, err)
		return
	}
	if err := stage(sess, req, true); err != nil {
		sess.Cancel()
		ledgerError(c, err)
		return
	}
	item, err := sess.Commit(c.Request.Context())
	if err != nil {
		sess.Cancel()
		ledgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"item":  toItemResp(item),
		"items": toItemResps(sess.Items()),
		"total": sess.Total().String(),
	})
}

func (h *ItemHandler) DeleteItem(c *gin.Context) {
	_, sess, ok := h.ownSession(c)
	if !ok {
		return
	}

	if err := sess.RemoveItem(c.Request.Context(), c.Param("itemID")); err != nil {
		ledgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"items": toItemResps(sess.Items()),
		"total": sess.Total().String(),
	})
}

// RefreshItems reloads the persisted snapshot and reconciles it against any
// recent local edits.
func (h *ItemHandler) RefreshItems(c *gin.Context) {
	_, sess, ok := h.ownSession(c)
	if !ok {
		return
	}

	outcome, err := sess.Refresh(c.Request.Context())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "refresh failed")
		return
	}

	util.Success(c, util.Response{
		"outcome": outcome.String(),
		"items":   toItemResps(sess.Items()),
		"total":   sess.Total().String(),
	})
}

// GetSummary projects the aggregate figures for the asset: total annual
// expense, and net income / expense ratio when the asset has an income
// figure. Absent income yields absent ratio fields, not zeros.
func (h *ItemHandler) GetSummary(c *gin.Context) {
	asset, sess, ok := h.ownSession(c)
	if !ok {
		return
	}

	var income *decimal.Decimal
	if asset.ExternalIncome != "" {
		if d, err := decimal.NewFromString(asset.ExternalIncome); err == nil {
			income = &d
		}
	}

	s := sess.Summarize(income)
	resp := util.Response{
		"total_expense": s.TotalExpense.String(),
	}
	if s.NetIncome != nil {
		resp["net_income"] = s.NetIncome.String()
	}
	if s.ExpenseRatio != nil {
		resp["expense_ratio"] = s.ExpenseRatio.String()
	}

	util.Success(c, resp)
}
