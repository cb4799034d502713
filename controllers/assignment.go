package controllers

import (
	"net/http"
	"strconv"
	"time"

	"journal-management-api/models"
	"journal-management-api/services"

	"github.com/gin-gonic/gin"
)

type createAssignmentReq struct {
	RefereeID int `json:"referee_id" binding:"required"`
}

type declineAssignmentReq struct {
	Comment string `json:"comment"`
}

type completeReportReq struct {
	Recommendation            string `json:"recommendation" binding:"required"`
	CommentsForEditor         string `json:"comments_for_editor"`
	CommentsForAuthor         string `json:"comments_for_author"`
	AttachmentForEditorFileID *int   `json:"attachment_for_editor_file_id"`
	AttachmentForAuthorFileID *int   `json:"attachment_for_author_file_id"`
}

var validRecommendations = map[string]bool{
	models.RecommendationReject: true,
	models.RecommendationMajor:  true,
	models.RecommendationMinor:  true,
	models.RecommendationAccept: true,
}

func loadAssignment(c *gin.Context) (*models.RefereeAssignment, bool) {
	aid, err := strconv.Atoi(c.Param("id"))
	if err != nil || aid <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment id"})
		return nil, false
	}

	var a models.RefereeAssignment
	if err := getDB().Preload("Submission").First(&a, "assignment_id = ?", aid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assignment not found"})
		return nil, false
	}
	return &a, true
}

// CreateAssignment invites a referee to review a submission. Due dates
// come from the journal settings; the referee letter is the next unused
// label for this submission.
func CreateAssignment(c *gin.Context) {
	sub, ok := loadSubmission(c)
	if !ok {
		return
	}

	var req createAssignmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var referee models.User
	if err := getDB().Where("user_id = ? AND referee = ? AND delete_at IS NULL", req.RefereeID, true).
		First(&referee).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user is not a referee"})
		return
	}

	settings, err := services.GetJournalSettings(getDB())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var priorCount int64
	if err := getDB().Model(&models.RefereeAssignment{}).
		Where("submission_id = ?", sub.SubmissionID).
		Count(&priorCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	responseDue := now.AddDate(0, 0, settings.DaysToRespondToRefereeRequest)
	reportDue := now.AddDate(0, 0, settings.DaysForExternalReview)

	a := models.RefereeAssignment{
		SubmissionID:          sub.SubmissionID,
		RefereeID:             referee.UserID,
		RefereeLetter:         refereeLetter(int(priorCount)),
		AssignedAt:            now,
		ResponseDueAt:         &responseDue,
		ReportDueAt:           &reportDue,
		ReportOriginallyDueAt: &reportDue,
		CreateAt:              now,
	}
	if err := getDB().Create(&a).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	notifySafe(services.ActionRefereeRequest, services.DispatchContext{Submission: sub, Assignment: &a})

	c.JSON(http.StatusCreated, gin.H{"assignment": a})
}

// refereeLetter labels assignments "Referee A", "Referee B", ... in
// invitation order.
func refereeLetter(priorCount int) string {
	return "Referee " + string(rune('A'+priorCount%26))
}

// AgreeToAssignment records that the referee accepted the invitation.
func AgreeToAssignment(c *gin.Context) {
	a, ok := requireOwnPendingAssignment(c)
	if !ok {
		return
	}

	now := time.Now()
	agreed := true
	updates := map[string]interface{}{
		"agreed":    true,
		"agreed_at": now,
	}
	if err := getDB().Model(a).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	a.Agreed = &agreed
	a.AgreedAt = &now

	c.JSON(http.StatusOK, gin.H{"ok": true, "report_due_at": a.ReportDueAt})
}

// DeclineAssignment records a declined invitation and tells the area
// editor so they can invite someone else.
func DeclineAssignment(c *gin.Context) {
	a, ok := requireOwnPendingAssignment(c)
	if !ok {
		return
	}

	var req declineAssignmentReq
	_ = c.ShouldBindJSON(&req)

	now := time.Now()
	agreed := false
	updates := map[string]interface{}{
		"agreed":      false,
		"declined_at": now,
	}
	if req.Comment != "" {
		updates["decline_comment"] = req.Comment
	}
	if err := getDB().Model(a).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	a.Agreed = &agreed
	a.DeclinedAt = &now
	if req.Comment != "" {
		a.DeclineComment = &req.Comment
	}

	notifySafe(services.ActionRefereeRequestDeclined, services.DispatchContext{Submission: a.Submission, Assignment: a})

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// CancelAssignment withdraws an invitation or an in-progress review.
func CancelAssignment(c *gin.Context) {
	a, ok := loadAssignment(c)
	if !ok {
		return
	}
	if a.Canceled || a.ReportCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assignment is already terminal"})
		return
	}

	if err := getDB().Model(a).Update("canceled", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	a.Canceled = true

	notifySafe(services.ActionRefereeRequestWithdrawn, services.DispatchContext{Submission: a.Submission, Assignment: a})

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// CompleteReport files the referee's report and notifies the area
// editor; when the expected number of reports is in, the editor also
// gets the all-reports-complete notice.
func CompleteReport(c *gin.Context) {
	uid, _ := getCurrentUserID(c)

	a, ok := loadAssignment(c)
	if !ok {
		return
	}
	if a.RefereeID != uid {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if !a.Active() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assignment is not awaiting a report"})
		return
	}

	var req completeReportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validRecommendations[req.Recommendation] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recommendation"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"report_completed":    true,
		"report_completed_at": now,
		"recommendation":      req.Recommendation,
		"comments_for_editor": req.CommentsForEditor,
		"comments_for_author": req.CommentsForAuthor,
	}
	if req.AttachmentForEditorFileID != nil {
		updates["attachment_for_editor_file_id"] = *req.AttachmentForEditorFileID
	}
	if req.AttachmentForAuthorFileID != nil {
		updates["attachment_for_author_file_id"] = *req.AttachmentForAuthorFileID
	}
	if err := getDB().Model(a).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	a.ReportCompleted = true
	a.ReportCompletedAt = &now
	a.Recommendation = &req.Recommendation
	a.AttachmentForEditorFileID = req.AttachmentForEditorFileID
	a.AttachmentForAuthorFileID = req.AttachmentForAuthorFileID

	notifySafe(services.ActionReportCompleted, services.DispatchContext{Submission: a.Submission, Assignment: a})

	// Expected-report threshold reached: prompt for a decision.
	settings, err := services.GetJournalSettings(getDB())
	if err == nil {
		var completed int64
		countErr := getDB().Model(&models.RefereeAssignment{}).
			Where("submission_id = ? AND report_completed = ? AND canceled = ?", a.SubmissionID, true, false).
			Count(&completed).Error
		if countErr == nil && int(completed) == settings.NumberOfReportsExpected {
			notifySafe(services.ActionAllReportsCompleted, services.DispatchContext{Submission: a.Submission})
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func requireOwnPendingAssignment(c *gin.Context) (*models.RefereeAssignment, bool) {
	uid, _ := getCurrentUserID(c)

	a, ok := loadAssignment(c)
	if !ok {
		return nil, false
	}
	if a.RefereeID != uid {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return nil, false
	}
	if !a.Pending() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invitation already answered"})
		return nil, false
	}
	return a, true
}
