package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mpancino/myassetplace/internal/models"
	"github.com/mpancino/myassetplace/internal/session"
	"github.com/mpancino/myassetplace/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackupHandler snapshots a user's assets and line items to a file and can
// restore from one.
type BackupHandler struct {
	DB        *gorm.DB
	BackupDir string
	Sessions  *session.Manager
}

func NewBackupHandler(db *gorm.DB, backupDir string, sessions *session.Manager) *BackupHandler {
	return &BackupHandler{DB: db, BackupDir: backupDir, Sessions: sessions}
}

// backupData is the file payload.
type backupData struct {
	UserID  uint               `json:"user_id"`
	Created time.Time          `json:"created"`
	Assets  []models.Asset     `json:"assets"`
	Items   []models.AssetItem `json:"items"`
}

// CreateBackup writes a snapshot file of the user's assets and items.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var assets []models.Asset
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("created_at ASC").
		Find(&assets).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query assets failed")
		return
	}

	assetIDs := make([]string, 0, len(assets))
	for _, a := range assets {
		assetIDs = append(assetIDs, a.ID)
	}

	var items []models.AssetItem
	if len(assetIDs) > 0 {
		if err := h.DB.Where("asset_id IN ?", assetIDs).
			Order("id ASC").
			Find(&items).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query items failed")
			return
		}
	}

	data := backupData{
		UserID:  user.ID,
		Created: time.Now(),
		Assets:  assets,
		Items:   items,
	}
	raw, err := json.MarshalIndent(&data, "", "  ")
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "serialize failed")
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create backup dir failed")
		return
	}

	fileName := fmt.Sprintf("backup-%d-%s.json", user.ID, uuid.NewString())
	filePath := filepath.Join(h.BackupDir, fileName)

	if err := os.WriteFile(filePath, raw, 0o600); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "write backup failed")
		return
	}

	info, _ := os.Stat(filePath)

	backup := models.Backup{
		UserID:   user.ID,
		FileName: fileName,
		FilePath: filePath,
		Size:     info.Size(),
	}
	if err := h.DB.Create(&backup).Error; err != nil {
		_ = os.Remove(filePath)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save backup record failed")
		return
	}

	util.Success(c, util.Response{
		"backup": gin.H{
			"id":         backup.ID,
			"file_name":  backup.FileName,
			"size":       backup.Size,
			"created_at": backup.CreatedAt,
		},
	})
}

// ListBackups lists the user's backups, newest first.
func (h *BackupHandler) ListBackups(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var backups []models.Backup
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&backups).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]gin.H, 0, len(backups))
	for _, b := range backups {
		items = append(items, gin.H{
			"id":         b.ID,
			"file_name":  b.FileName,
			"size":       b.Size,
			"created_at": b.CreatedAt,
		})
	}

	util.Success(c, util.Response{"backups": items})
}

// ownBackup loads a backup record owned by the user.
func (h *BackupHandler) ownBackup(c *gin.Context, userID uint) (*models.Backup, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return nil, false
	}

	var backup models.Backup
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&backup).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return nil, false
	}
	return &backup, true
}

// DownloadBackup streams the snapshot file.
func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	backup, ok := h.ownBackup(c, user.ID)
	if !ok {
		return
	}

	c.FileAttachment(backup.FilePath, backup.FileName)
}

// RestoreBackup replaces the user's assets and items with the snapshot.
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	backup, ok := h.ownBackup(c, user.ID)
	if !ok {
		return
	}

	raw, err := os.ReadFile(backup.FilePath)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "read backup failed")
		return
	}

	var data backupData
	if err := json.Unmarshal(raw, &data); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "backup file corrupt")
		return
	}
	if data.UserID != user.ID {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "backup belongs to another user")
		return
	}

	// collect current asset ids so their sessions can be dropped after the swap
	var current []models.Asset
	if err := h.DB.Where("user_id = ?", user.ID).Find(&current).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		for _, a := range current {
			if err := tx.Where("asset_id = ?", a.ID).Delete(&models.AssetItem{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Asset{}).Error; err != nil {
			return err
		}
		for i := range data.Assets {
			a := data.Assets[i]
			a.UserID = user.ID
			if err := tx.Create(&a).Error; err != nil {
				return err
			}
		}
		for i := range data.Items {
			it := data.Items[i]
			it.ID = 0 // fresh autoincrement key
			if err := tx.Create(&it).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "restore failed")
		return
	}

	for _, a := range current {
		h.Sessions.Drop(a.ID)
	}
	for _, a := range data.Assets {
		h.Sessions.Drop(a.ID)
	}

	util.Success(c, util.Response{
		"message": "restored",
		"assets":  len(data.Assets),
		"items":   len(data.Items),
	})
}

// DeleteBackup removes the record and its file.
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	backup, ok := h.ownBackup(c, user.ID)
	if !ok {
		return
	}

	if err := h.DB.Delete(backup).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}
	_ = os.Remove(backup.FilePath)

	util.Success(c, util.Response{"message": "deleted"})
}
