package repository

import (
	"time"

	"kejani/internal/domain"
	"kejani/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// priorityOrder ranks notices urgent > high > normal > low in SQL, matching
// domain.PriorityRank.
const priorityOrder = "CASE notices.priority WHEN 'urgent' THEN 4 WHEN 'high' THEN 3 WHEN 'normal' THEN 2 ELSE 1 END DESC"

type NoticeRepository struct {
	db *gorm.DB
}

func NewNoticeRepository(db *gorm.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

// CreateWithRecipients stores the notice and, for frozen audiences, its
// recipient snapshot in one transaction.
func (r *NoticeRepository) CreateWithRecipients(n *models.Notice, recipients []models.NoticeRecipient) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		for i := range recipients {
			recipients[i].NoticeID = n.ID
		}
		if len(recipients) > 0 {
			if err := tx.Create(&recipients).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *NoticeRepository) GetByID(id uint) (*models.Notice, error) {
	var n models.Notice
	err := r.db.Preload("Attachments").First(&n, id).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NoticeRepository) Update(n *models.Notice) error {
	return r.db.Save(n).Error
}

func (r *NoticeRepository) ListByAuthor(authorID uint, limit, offset int) ([]models.Notice, error) {
	var list []models.Notice
	err := r.db.Where("author_id = ?", authorID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// FeedFilter narrows the tenant feed; zero values mean "no filter".
type FeedFilter struct {
	Priority   string
	UnreadOnly bool
}

// feedQuery builds the audience predicate for a tenant: frozen audiences
// match through the recipient snapshot, property_tenants matches the
// tenant's current property, and all_tenants matches when the author
// currently manages that property (owner or linked caretaker). propertyID 0
// stands for an unassigned tenant and matches no lazy audience. Only active
// notices qualify: published, past publish_at, not expired.
func (r *NoticeRepository) feedQuery(tenantID, propertyID uint, now time.Time) *gorm.DB {
	frozen := []string{string(domain.AudienceSpecificUnits), string(domain.AudienceSpecificTenants)}
	return r.db.Model(&models.Notice{}).
		Joins("LEFT JOIN read_receipts rr ON rr.notice_id = notices.id AND rr.user_id = ?", tenantID).
		Where("notices.published = ?", true).
		Where("notices.publish_at IS NULL OR notices.publish_at <= ?", now).
		Where("notices.expires_at IS NULL OR notices.expires_at > ?", now).
		Where(`(
			(notices.audience_type IN ? AND EXISTS (
				SELECT 1 FROM notice_recipients nr
				WHERE nr.notice_id = notices.id AND nr.tenant_id = ?))
			OR (notices.audience_type = ? AND notices.property_id = ?)
			OR (notices.audience_type = ? AND EXISTS (
				SELECT 1 FROM properties pr
				WHERE pr.id = ? AND pr.deleted_at IS NULL
				AND (pr.landlord_id = notices.author_id OR EXISTS (
					SELECT 1 FROM property_caretakers pc
					WHERE pc.property_id = pr.id AND pc.user_id = notices.author_id))))
		)`,
			frozen, tenantID,
			string(domain.AudiencePropertyTenants), propertyID,
			string(domain.AudienceAllTenants), propertyID)
}

// Feed returns the notices currently targeting the tenant: unread first,
// then by priority, then newest first.
func (r *NoticeRepository) Feed(tenantID, propertyID uint, f FeedFilter, now time.Time, limit, offset int) ([]models.Notice, error) {
	q := r.feedQuery(tenantID, propertyID, now).Select("notices.*")
	if f.UnreadOnly {
		q = q.Where("rr.id IS NULL")
	}
	if f.Priority != "" {
		q = q.Where("notices.priority = ?", f.Priority)
	}
	var list []models.Notice
	err := q.Order("CASE WHEN rr.id IS NULL THEN 0 ELSE 1 END").
		Order(priorityOrder).
		Order("notices.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// TenantStats are the feed counters shown to a tenant.
type TenantStats struct {
	Total      int64 `json:"total"`
	Unread     int64 `json:"unread"`
	Urgent     int64 `json:"urgent_unread"`
	AckPending int64 `json:"acknowledgment_pending"`
	Recent     int64 `json:"recent"`
}

func (r *NoticeRepository) TenantStats(tenantID, propertyID uint, now time.Time) (*TenantStats, error) {
	s := &TenantStats{}
	count := func(q *gorm.DB, dst *int64) error {
		return q.Count(dst).Error
	}
	if err := count(r.feedQuery(tenantID, propertyID, now), &s.Total); err != nil {
		return nil, err
	}
	if err := count(r.feedQuery(tenantID, propertyID, now).Where("rr.id IS NULL"), &s.Unread); err != nil {
		return nil, err
	}
	if err := count(r.feedQuery(tenantID, propertyID, now).
		Where("rr.id IS NULL AND notices.priority = ?", string(domain.PriorityUrgent)), &s.Urgent); err != nil {
		return nil, err
	}
	if err := count(r.feedQuery(tenantID, propertyID, now).
		Where("rr.id IS NULL AND notices.requires_ack = ?", true), &s.AckPending); err != nil {
		return nil, err
	}
	if err := count(r.feedQuery(tenantID, propertyID, now).
		Where("notices.created_at >= ?", now.AddDate(0, 0, -7)), &s.Recent); err != nil {
		return nil, err
	}
	return s, nil
}

// AuthorStats summarize an author's own notices.
type AuthorStats struct {
	Created    int64 `json:"created"`
	Published  int64 `json:"published"`
	Drafts     int64 `json:"drafts"`
	Urgent     int64 `json:"urgent"`
	RequireAck int64 `json:"requiring_acknowledgment"`
}

func (r *NoticeRepository) AuthorStats(authorID uint) (*AuthorStats, error) {
	s := &AuthorStats{}
	base := func() *gorm.DB {
		return r.db.Model(&models.Notice{}).Where("author_id = ?", authorID)
	}
	if err := base().Count(&s.Created).Error; err != nil {
		return nil, err
	}
	if err := base().Where("published = ?", true).Count(&s.Published).Error; err != nil {
		return nil, err
	}
	if err := base().Where("published = ?", false).Count(&s.Drafts).Error; err != nil {
		return nil, err
	}
	if err := base().Where("priority = ?", string(domain.PriorityUrgent)).Count(&s.Urgent).Error; err != nil {
		return nil, err
	}
	if err := base().Where("requires_ack = ?", true).Count(&s.RequireAck).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// InAudience reports whether the notice currently targets the tenant, under
// the same rules the feed query applies.
func (r *NoticeRepository) InAudience(n *models.Notice, tenantID uint, propertyID *uint) (bool, error) {
	if n.Frozen() {
		var c int64
		err := r.db.Model(&models.NoticeRecipient{}).
			Where("notice_id = ? AND tenant_id = ?", n.ID, tenantID).Count(&c).Error
		return c > 0, err
	}
	switch domain.AudienceType(n.AudienceType) {
	case domain.AudiencePropertyTenants:
		return propertyID != nil && n.PropertyID != nil && *n.PropertyID == *propertyID, nil
	case domain.AudienceAllTenants:
		if propertyID == nil {
			return false, nil
		}
		return r.authorManages(n.AuthorID, *propertyID)
	}
	return false, nil
}

func (r *NoticeRepository) authorManages(authorID, propertyID uint) (bool, error) {
	var c int64
	err := r.db.Model(&models.Property{}).
		Where(`properties.id = ? AND (properties.landlord_id = ? OR EXISTS (
			SELECT 1 FROM property_caretakers pc
			WHERE pc.property_id = properties.id AND pc.user_id = ?))`,
			propertyID, authorID, authorID).
		Count(&c).Error
	return c > 0, err
}

// ResolveAudience computes the current recipient set: the snapshot for
// frozen audiences, current assignments for the lazy ones.
func (r *NoticeRepository) ResolveAudience(n *models.Notice) ([]uint, error) {
	var ids []uint
	if n.Frozen() {
		err := r.db.Model(&models.NoticeRecipient{}).
			Where("notice_id = ?", n.ID).Pluck("tenant_id", &ids).Error
		return ids, err
	}
	switch domain.AudienceType(n.AudienceType) {
	case domain.AudiencePropertyTenants:
		if n.PropertyID == nil {
			return nil, nil
		}
		err := r.db.Model(&models.Unit{}).
			Where("property_id = ? AND tenant_id IS NOT NULL", *n.PropertyID).
			Pluck("tenant_id", &ids).Error
		return ids, err
	case domain.AudienceAllTenants:
		err := r.db.Model(&models.Unit{}).Distinct("units.tenant_id").
			Joins("JOIN properties pr ON pr.id = units.property_id AND pr.deleted_at IS NULL").
			Where(`units.tenant_id IS NOT NULL AND (pr.landlord_id = ? OR EXISTS (
				SELECT 1 FROM property_caretakers pc
				WHERE pc.property_id = pr.id AND pc.user_id = ?))`,
				n.AuthorID, n.AuthorID).
			Pluck("units.tenant_id", &ids).Error
		return ids, err
	}
	return nil, nil
}

// InsertReceipt records a read. Inserting an existing (notice, user) pair is
// a no-op, which is what makes mark-read idempotent.
func (r *NoticeRepository) InsertReceipt(noticeID, userID uint, at time.Time) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "notice_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&models.ReadReceipt{NoticeID: noticeID, UserID: userID, ReadAt: at}).Error
}

func (r *NoticeRepository) ReceiptsFor(noticeID uint) ([]models.ReadReceipt, error) {
	var list []models.ReadReceipt
	err := r.db.Where("notice_id = ?", noticeID).Find(&list).Error
	return list, err
}

func (r *NoticeRepository) ReceiptsForUser(userID uint, noticeIDs []uint) ([]models.ReadReceipt, error) {
	if len(noticeIDs) == 0 {
		return []models.ReadReceipt{}, nil
	}
	var list []models.ReadReceipt
	err := r.db.Where("user_id = ? AND notice_id IN ?", userID, noticeIDs).Find(&list).Error
	return list, err
}

func (r *NoticeRepository) AddAttachment(a *models.NoticeAttachment) error {
	return r.db.Create(a).Error
}
