package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"journal-management-api/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadSize = int64(20 * 1024 * 1024) // 20MB

// UploadDocument stores a manuscript or report attachment on disk under
// a uuid name and records it in file_uploads. The returned file_id is
// what submission and report endpoints reference.
func UploadDocument(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	if file.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 20MB limit"})
		return
	}

	upload := models.FileUpload{
		OriginalName: filepath.Base(file.Filename),
		FileSize:     file.Size,
		MimeType:     file.Header.Get("Content-Type"),
		UploadedBy:   userID,
		UploadedAt:   time.Now(),
	}
	if !upload.IsValidDocumentType() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file type not allowed"})
		return
	}

	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}
	if err := os.MkdirAll(uploadPath, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create upload directory"})
		return
	}

	storedName := uuid.New().String() + filepath.Ext(file.Filename)
	fullPath := filepath.Join(uploadPath, storedName)
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}
	upload.StoredPath = fullPath

	if err := getDB().Create(&upload).Error; err != nil {
		os.Remove(fullPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file info"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"file": upload})
}

// DownloadDocument streams a stored file back under its original name.
func DownloadDocument(c *gin.Context) {
	fileID, err := strconv.Atoi(c.Param("id"))
	if err != nil || fileID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	var upload models.FileUpload
	if err := getDB().First(&upload, "file_id = ? AND delete_at IS NULL", fileID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	if _, err := os.Stat(upload.StoredPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file missing from storage"})
		return
	}

	c.FileAttachment(upload.StoredPath, upload.OriginalName)
}
