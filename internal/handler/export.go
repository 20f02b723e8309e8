package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/mpancino/myassetplace/internal/models"
	"github.com/mpancino/myassetplace/internal/session"
	"github.com/mpancino/myassetplace/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler writes an asset's ledger as CSV or XLSX.
type ExportHandler struct {
	DB       *gorm.DB
	Sessions *session.Manager
}

func NewExportHandler(db *gorm.DB, sessions *session.Manager) *ExportHandler {
	return &ExportHandler{DB: db, Sessions: sessions}
}

func (h *ExportHandler) ownSession(c *gin.Context) (*models.Asset, *session.Session, bool) {
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

var exportHeaders = []string{"Category", "Label", "Amount", "Frequency", "Annual Total"}

// ExportCSV exports an asset's line items as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	asset, sess, ok := h.ownSession(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s_items_%s.csv\"",
		asset.Kind, time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, it := range sess.Items() {
		writer.Write([]string{
			it.CategoryID,
			it.Label,
			it.Amount.String(),
			string(it.Frequency),
			it.AnnualTotal.String(),
		})
	}
	writer.Write([]string{"", "", "", "Total", sess.Total().String()})
}

// ExportXLSX exports an asset's line items as XLSX.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	asset, sess, ok := h.ownSession(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "Line Items"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create sheet failed")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, col := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, col)
	}

	items := sess.Items()
	for idx, it := range items {
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), it.CategoryID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), it.Label)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), it.Amount.String())
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), string(it.Frequency))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), it.AnnualTotal.String())
	}

	totalRow := len(items) + 2
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", totalRow), "Total")
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", totalRow), sess.Total().String())

	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 14)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s_items_%s.xlsx\"",
		asset.Kind, time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
