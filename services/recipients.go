package services

import (
	"errors"
	"fmt"

	"journal-management-api/models"

	"gorm.io/gorm"
)

var (
	// ErrUnknownAction is returned when an action identifier is not in
	// the catalog.
	ErrUnknownAction = errors.New("unknown notification action")
	// ErrNoRecipients is returned only when the service is configured to
	// require recipients; by default empty resolution is permitted.
	ErrNoRecipients = errors.New("no recipients resolved")
)

// DispatchContext carries the entities that triggered a notification.
// Submission is required for every action; Assignment only for
// referee-related ones.
type DispatchContext struct {
	Submission *models.Submission
	Assignment *models.RefereeAssignment
}

// ManagingEditors returns every active user holding the managing editor
// flag, ordered by id.
func ManagingEditors(db *gorm.DB) ([]models.User, error) {
	var editors []models.User
	err := db.Where("managing_editor = ? AND delete_at IS NULL", true).
		Order("user_id ASC").
		Find(&editors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load managing editors: %w", err)
	}
	return editors, nil
}

// AreaEditorOrElseManagingEditors returns the submission's area editor
// when one is assigned, otherwise the full managing editor set. The
// fallback keeps action-required notifications from being dropped for
// unassigned submissions.
func AreaEditorOrElseManagingEditors(db *gorm.DB, sub *models.Submission) ([]models.User, error) {
	if sub != nil && sub.AreaEditorID != nil {
		ae, err := loadUser(db, *sub.AreaEditorID)
		if err != nil {
			return nil, err
		}
		return []models.User{*ae}, nil
	}
	return ManagingEditors(db)
}

func loadUser(db *gorm.DB, userID int) (*models.User, error) {
	var user models.User
	if err := db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return &user, nil
}

// resolvePrimary computes the ordered, deduplicated primary recipient
// list for one action.
func resolvePrimary(db *gorm.DB, audience Audience, ctx DispatchContext) ([]models.User, error) {
	switch audience {
	case AudienceManagingEditors:
		editors, err := ManagingEditors(db)
		if err != nil {
			return nil, err
		}
		return dedupeUsers(editors), nil

	case AudienceAreaEditorOrElse:
		recipients, err := AreaEditorOrElseManagingEditors(db, ctx.Submission)
		if err != nil {
			return nil, err
		}
		return dedupeUsers(recipients), nil

	case AudienceReferee:
		if ctx.Assignment == nil {
			return nil, errors.New("referee action dispatched without an assignment")
		}
		referee, err := loadUser(db, ctx.Assignment.RefereeID)
		if err != nil {
			return nil, err
		}
		return []models.User{*referee}, nil

	case AudienceAuthor:
		if ctx.Submission == nil {
			return nil, errors.New("author action dispatched without a submission")
		}
		author, err := loadUser(db, ctx.Submission.AuthorID)
		if err != nil {
			return nil, err
		}
		return []models.User{*author}, nil
	}

	return nil, fmt.Errorf("unhandled audience %d", audience)
}

// resolveCc applies the static cc overlay. The cc list is deduplicated
// internally but stays additive with respect to the primaries: a user
// who is already a primary recipient may still appear once in cc. This
// mirrors long-standing behavior and is covered by tests.
func resolveCc(db *gorm.DB, policy CcPolicy, ctx DispatchContext) ([]models.User, error) {
	var cc []models.User

	if policy.CcManagingEditors {
		editors, err := ManagingEditors(db)
		if err != nil {
			return nil, err
		}
		cc = append(cc, editors...)
	}

	if policy.CcAreaEditor && ctx.Submission != nil && ctx.Submission.AreaEditorID != nil {
		ae, err := loadUser(db, *ctx.Submission.AreaEditorID)
		if err != nil {
			return nil, err
		}
		cc = append(cc, *ae)
	}

	return dedupeUsers(cc), nil
}

// ResolveRecipients computes the (to, cc) pair for an action per the
// policy table.
func ResolveRecipients(db *gorm.DB, action string, ctx DispatchContext) (to, cc []models.User, err error) {
	spec, ok := actionCatalog[action]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	to, err = resolvePrimary(db, spec.Audience, ctx)
	if err != nil {
		return nil, nil, err
	}

	cc, err = resolveCc(db, spec.Cc, ctx)
	if err != nil {
		return nil, nil, err
	}

	return to, cc, nil
}

// dedupeUsers drops later duplicates while preserving order.
func dedupeUsers(users []models.User) []models.User {
	seen := make(map[int]bool, len(users))
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if seen[u.UserID] {
			continue
		}
		seen[u.UserID] = true
		out = append(out, u)
	}
	return out
}
