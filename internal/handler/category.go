package handler

import (
	"net/http"

	"github.com/mpancino/myassetplace/internal/models"
	"github.com/mpancino/myassetplace/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler serves the category reference data.
type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

// ListCategories returns the categories for one asset kind, in display order.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	kind := c.Query("kind")
	if err := util.ValidateAssetKind(kind); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var cats []models.Category
	if err := h.DB.Where("kind = ?", kind).
		Order("display_order ASC, id ASC").
		Find(&cats).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]gin.H, 0, len(cats))
	for _, cat := range cats {
		items = append(items, gin.H{
			"id":   cat.ID,
			"name": cat.Name,
		})
	}

	util.Success(c, util.Response{"categories": items})
}
