package controllers

import (
	"net/http"
	"time"

	"journal-management-api/models"
	"journal-management-api/services"

	"github.com/gin-gonic/gin"
)

type enterDecisionReq struct {
	Decision string `json:"decision" binding:"required"`
}

var validDecisions = map[string]bool{
	models.DecisionReject:         true,
	models.DecisionMajorRevisions: true,
	models.DecisionMinorRevisions: true,
	models.DecisionAccept:         true,
}

// EnterDecision records the area editor's decision on a submission and
// asks the managing editors to approve it.
func EnterDecision(c *gin.Context) {
	sub, ok := loadSubmission(c)
	if !ok {
		return
	}
	if !sub.Live() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "submission is not active"})
		return
	}
	if sub.DecisionApproved {
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision already approved"})
		return
	}

	var req enterDecisionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validDecisions[req.Decision] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid decision"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"decision":             req.Decision,
		"decision_entered_at":  now,
		"approval_reminded_at": nil,
	}
	if err := getDB().Model(sub).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sub.Decision = req.Decision
	sub.DecisionEnteredAt = &now

	notifySafe(services.ActionDecisionNeedsApproval, services.DispatchContext{Submission: sub})

	c.JSON(http.StatusOK, gin.H{"ok": true, "decision": sub.Decision})
}

// ApproveDecision confirms the area editor's decision, tells the area
// editor, delivers the outcome to the author with the referee reports,
// and thanks each referee whose report contributed.
func ApproveDecision(c *gin.Context) {
	sub, ok := loadSubmission(c)
	if !ok {
		return
	}
	if !sub.HasDecision() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no decision to approve"})
		return
	}
	if sub.DecisionApproved {
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision already approved"})
		return
	}

	if err := getDB().Model(sub).Update("decision_approved", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sub.DecisionApproved = true

	notifySafe(services.ActionDecisionApproved, services.DispatchContext{Submission: sub})
	notifySafe(services.ActionDecisionReached, services.DispatchContext{Submission: sub})

	// Each referee with a completed report learns the outcome.
	var completed []models.RefereeAssignment
	if err := getDB().
		Where("submission_id = ? AND report_completed = ? AND canceled = ?", sub.SubmissionID, true, false).
		Order("assignment_id ASC").
		Find(&completed).Error; err == nil {
		for i := range completed {
			completed[i].Submission = sub
			notifySafe(services.ActionRefereeOutcome, services.DispatchContext{Submission: sub, Assignment: &completed[i]})
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
