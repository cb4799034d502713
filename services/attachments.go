package services

import (
	"log"
	"os"

	"journal-management-api/config"
	"journal-management-api/models"

	"gorm.io/gorm"
)

// AttachmentProvider is anything that can contribute an optional file to
// an outbound notification. A nil file means the entity has nothing to
// attach, which is a normal outcome, not an error.
type AttachmentProvider interface {
	AttachmentFile(db *gorm.DB) (*models.FileUpload, error)
}

// manuscriptOf provides a submission's manuscript file.
type manuscriptOf struct {
	submission *models.Submission
}

func (p manuscriptOf) AttachmentFile(db *gorm.DB) (*models.FileUpload, error) {
	if p.submission == nil {
		return nil, nil
	}
	return loadFileUpload(db, p.submission.ManuscriptFileID)
}

// editorReportOf provides an assignment's editor-facing report file.
type editorReportOf struct {
	assignment *models.RefereeAssignment
}

func (p editorReportOf) AttachmentFile(db *gorm.DB) (*models.FileUpload, error) {
	if p.assignment == nil {
		return nil, nil
	}
	return loadFileUpload(db, p.assignment.AttachmentForEditorFileID)
}

// authorReportOf provides an assignment's author-facing report file.
type authorReportOf struct {
	assignment *models.RefereeAssignment
}

func (p authorReportOf) AttachmentFile(db *gorm.DB) (*models.FileUpload, error) {
	if p.assignment == nil {
		return nil, nil
	}
	return loadFileUpload(db, p.assignment.AttachmentForAuthorFileID)
}

func loadFileUpload(db *gorm.DB, fileID *int) (*models.FileUpload, error) {
	if fileID == nil {
		return nil, nil
	}
	var file models.FileUpload
	if err := db.Where("file_id = ?", *fileID).First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// collectAttachments reads each provider's file into memory. Failures
// are recovered per attachment: the file is skipped with a log line and
// the notification still goes out.
func collectAttachments(db *gorm.DB, providers []AttachmentProvider) []config.MailAttachment {
	attachments := make([]config.MailAttachment, 0, len(providers))
	for _, provider := range providers {
		file, err := provider.AttachmentFile(db)
		if err != nil {
			log.Printf("skipping unavailable attachment: %v", err)
			continue
		}
		if file == nil {
			continue
		}
		content, err := os.ReadFile(file.StoredPath)
		if err != nil {
			log.Printf("skipping unreadable attachment %s: %v", file.OriginalName, err)
			continue
		}
		attachments = append(attachments, config.MailAttachment{
			Filename: file.OriginalName,
			Content:  content,
		})
	}
	return attachments
}
