package controllers

import (
	"net/http"
	"strconv"
	"time"

	"journal-management-api/middleware"
	"journal-management-api/models"
	"journal-management-api/services"
	"journal-management-api/utils"

	"github.com/gin-gonic/gin"
)

type createSubmissionReq struct {
	Title            string `json:"title" binding:"required"`
	Area             string `json:"area" binding:"required"`
	ManuscriptFileID *int   `json:"manuscript_file_id"`
	OriginalID       *int   `json:"original_id"`
}

type assignAreaEditorReq struct {
	AreaEditorID int `json:"area_editor_id" binding:"required"`
}

func loadSubmission(c *gin.Context) (*models.Submission, bool) {
	sid, err := strconv.Atoi(c.Param("id"))
	if err != nil || sid <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission id"})
		return nil, false
	}

	var sub models.Submission
	if err := getDB().First(&sub, "submission_id = ?", sid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return nil, false
	}
	return &sub, true
}

// CreateSubmission registers a new manuscript and tells the managing
// editors about it.
func CreateSubmission(c *gin.Context) {
	uid, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createSubmissionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub := models.Submission{
		Title:            utils.SanitizeInput(req.Title),
		Area:             utils.SanitizeInput(req.Area),
		AuthorID:         uid,
		ManuscriptFileID: req.ManuscriptFileID,
		CreateAt:         time.Now(),
	}

	// Revisions chain back to the very first version.
	if req.OriginalID != nil {
		var original models.Submission
		if err := getDB().First(&original, "submission_id = ?", *req.OriginalID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "original submission not found"})
			return
		}
		rootID := original.SubmissionID
		if original.OriginalID != nil {
			rootID = *original.OriginalID
		}
		sub.OriginalID = &rootID
		sub.RevisionNumber = original.RevisionNumber + 1
	}

	if err := getDB().Create(&sub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	notifySafe(services.ActionNewSubmission, services.DispatchContext{Submission: &sub})

	c.JSON(http.StatusCreated, gin.H{"submission": sub})
}

// GetSubmissions lists submissions: everything for editors, own
// submissions otherwise.
func GetSubmissions(c *gin.Context) {
	uid, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	q := getDB().Preload("Author").Preload("AreaEditor").Order("submission_id DESC")
	switch {
	case currentUserHasRole(c, middleware.RoleManagingEditor):
		// unrestricted
	case currentUserHasRole(c, middleware.RoleAreaEditor):
		q = q.Where("area_editor_id = ? OR author_id = ?", uid, uid)
	default:
		q = q.Where("author_id = ?", uid)
	}

	var subs []models.Submission
	if err := q.Find(&subs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

// GetSubmission returns one submission with its referee assignments.
func GetSubmission(c *gin.Context) {
	sub, ok := loadSubmission(c)
	if !ok {
		return
	}

	var assignments []models.RefereeAssignment
	if err := getDB().Preload("Referee").
		Where("submission_id = ?", sub.SubmissionID).
		Order("assignment_id ASC").
		Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": sub, "assignments": assignments})
}

// AssignAreaEditor puts a submission on an area editor's desk and
// notifies them.
func AssignAreaEditor(c *gin.Context) {
	sub, ok := loadSubmission(c)
	if !ok {
		return
	}

	var req assignAreaEditorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var editor models.User
	if err := getDB().Where("user_id = ? AND area_editor = ? AND delete_at IS NULL", req.AreaEditorID, true).
		First(&editor).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user is not an area editor"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"area_editor_id":              editor.UserID,
		"area_editor_assigned_at":     now,
		"internal_review_reminded_at": nil,
	}
	if err := getDB().Model(sub).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sub.AreaEditorID = &editor.UserID
	sub.AreaEditorAssignedAt = &now

	notifySafe(services.ActionNewAssignment, services.DispatchContext{Submission: sub})

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// WithdrawSubmission takes a submission out of consideration at the
// author's request.
func WithdrawSubmission(c *gin.Context) {
	uid, _ := getCurrentUserID(c)

	sub, ok := loadSubmission(c)
	if !ok {
		return
	}
	if sub.AuthorID != uid && !currentUserHasRole(c, middleware.RoleManagingEditor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	if err := getDB().Model(sub).Update("withdrawn", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ArchiveSubmission removes a finished submission from the active queue.
func ArchiveSubmission(c *gin.Context) {
	sub, ok := loadSubmission(c)
	if !ok {
		return
	}

	if err := getDB().Model(sub).Update("archived", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// UnarchiveSubmission restores an archived submission and alerts the
// managing editors that it needs attention again.
func UnarchiveSubmission(c *gin.Context) {
	sub, ok := loadSubmission(c)
	if !ok {
		return
	}
	if !sub.Archived {
		c.JSON(http.StatusBadRequest, gin.H{"error": "submission is not archived"})
		return
	}

	if err := getDB().Model(sub).Update("archived", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sub.Archived = false

	notifySafe(services.ActionSubmissionUnarchived, services.DispatchContext{Submission: sub})

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetSentEmails lists the notification ledger for one submission.
func GetSentEmails(c *gin.Context) {
	sub, ok := loadSubmission(c)
	if !ok {
		return
	}

	var rows []models.SentEmail
	if err := getDB().Where("submission_id = ?", sub.SubmissionID).
		Order("sent_email_id DESC").
		Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent_emails": rows})
}
