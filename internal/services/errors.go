package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/newsroomhq/rundown/internal/ctxutil"
	"github.com/newsroomhq/rundown/internal/models"
)

var (
	// ErrBulletinLocked rejects edits to a bulletin whose editorial lock is
	// held by someone else.
	ErrBulletinLocked = errors.New("bulletin is locked by another user")

	// ErrStoryUnavailable rejects assignment of a pool story that is already
	// assigned or retired.
	ErrStoryUnavailable = errors.New("pool story is not available")

	// ErrValidation wraps rejected input values.
	ErrValidation = errors.New("invalid input")
)

// ensureEditable enforces the editorial lock: edits to a locked bulletin are
// allowed only for the lock holder and admins. This gates edits, it is not
// the transaction-level serialization of recalculations.
func ensureEditable(b *models.Bulletin, actor ctxutil.Actor) error {
	if !b.IsLocked {
		return nil
	}
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if b.LockedBy != nil && *b.LockedBy == actor.UserID {
		return nil
	}
	return ErrBulletinLocked
}

func auditEntry(actor ctxutil.Actor, action, entityType, entityID, detail string) *models.AuditEntry {
	return &models.AuditEntry{
		EntryID:    uuid.NewString(),
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
	}
}

func validRowType(t models.RowType) bool {
	switch t {
	case models.RowStory, models.RowCommercial, models.RowBreakLink,
		models.RowOpen, models.RowClose, models.RowWelcome:
		return true
	}
	return false
}

func validSegmentType(t models.SegmentType) bool {
	switch t {
	case models.SegmentVO, models.SegmentSOT, models.SegmentLive,
		models.SegmentPkg, models.SegmentGfx:
		return true
	}
	return false
}
