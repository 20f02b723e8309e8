package handler

import (
	"net/http"
	"strings"

	"github.com/mpancino/myassetplace/internal/models"
	"github.com/mpancino/myassetplace/internal/session"
	"github.com/mpancino/myassetplace/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssetHandler serves asset CRUD. Line-item operations live in ItemHandler.
type AssetHandler struct {
	DB       *gorm.DB
	Sessions *session.Manager
}

func NewAssetHandler(db *gorm.DB, sessions *session.Manager) *AssetHandler {
	return &AssetHandler{DB: db, Sessions: sessions}
}

type createAssetReq struct {
	Name           string `json:"name" binding:"required,max=64"`
	Kind           string `json:"kind" binding:"required"`
	ExternalIncome string `json:"external_income"`
}

type updateAssetReq struct {
	Name           string `json:"name" binding:"required,max=64"`
	ExternalIncome string `json:"external_income"`
}

type assetResp struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	ExternalIncome string `json:"external_income,omitempty"`
}

func toAssetResp(a *models.Asset) assetResp {
	return assetResp{
		ID:             a.ID,
		Name:           a.Name,
		Kind:           a.Kind,
		ExternalIncome: a.ExternalIncome,
	}
}

// ownAsset loads an asset and checks it belongs to the user. Writes the
// error response on failure.
func (h *AssetHandler) ownAsset(c *gin.Context, userID uint) (*models.Asset, bool) {
	id := c.Param("id")
	var asset models.Asset
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&asset).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "asset not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return nil, false
	}
	return &asset, true
}

func (h *AssetHandler) CreateAsset(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createAssetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := util.ValidateAssetName(req.Name); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if err := util.ValidateAssetKind(req.Kind); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if err := util.ValidateIncome(req.ExternalIncome); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	asset := models.Asset{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		Name:           req.Name,
		Kind:           req.Kind,
		ExternalIncome: req.ExternalIncome,
	}
	if err := h.DB.Create(&asset).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create asset failed")
		return
	}

	util.Success(c, util.Response{"asset": toAssetResp(&asset)})
}

func (h *AssetHandler) ListAssets(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var assets []models.Asset
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("created_at ASC").
		Find(&assets).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]assetResp, 0, len(assets))
	for i := range assets {
		items = append(items, toAssetResp(&assets[i]))
	}

	util.Success(c, util.Response{"assets": items})
}

func (h *AssetHandler) GetAsset(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	asset, ok := h.ownAsset(c, user.ID)
	if !ok {
		return
	}

	sess, err := h.Sessions.Get(c.Request.Context(), asset.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "load ledger failed")
		return
	}

	util.Success(c, util.Response{
		"asset": toAssetResp(asset),
		"items": toItemResps(sess.Items()),
		"total": sess.Total().String(),
	})
}

func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	asset, ok := h.ownAsset(c, user.ID)
	if !ok {
		return
	}

	var req updateAssetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := util.ValidateAssetName(req.Name); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if err := util.ValidateIncome(req.ExternalIncome); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	asset.Name = req.Name
	asset.ExternalIncome = req.ExternalIncome
	if err := h.DB.Save(asset).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update failed")
		return
	}

	util.Success(c, util.Response{"asset": toAssetResp(asset)})
}

func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	asset, ok := h.ownAsset(c, user.ID)
	if !ok {
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("asset_id = ?", asset.ID).Delete(&models.AssetItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(asset).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}

	h.Sessions.Drop(asset.ID)

	util.Success(c, util.Response{"message": "deleted"})
}
