package models

import (
	"time"

	"kejani/internal/domain"
)

// Notice is an announcement authored by a landlord or caretaker and targeted
// at an audience of tenants. For the frozen audience types the recipient set
// is snapshotted into notice_recipients at creation; for the lazy types the
// audience is resolved against the author's current managed scope on read.
type Notice struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AuthorID     uint       `gorm:"not null;index" json:"author_id"`
	Title        string     `gorm:"size:200;not null" json:"title"`
	Body         string     `gorm:"type:text;not null" json:"body"`
	Priority     string     `gorm:"size:10;not null;default:'normal'" json:"priority"`
	AudienceType string     `gorm:"size:20;not null" json:"audience_type"`
	PropertyID   *uint      `gorm:"index" json:"property_id"`
	RequiresAck  bool       `gorm:"not null;default:false" json:"requires_acknowledgment"`
	Published    bool       `gorm:"not null;default:true" json:"published"`
	PublishAt    *time.Time `json:"publish_at"`
	ExpiresAt    *time.Time `json:"expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Author      User               `gorm:"foreignKey:AuthorID" json:"-"`
	Property    *Property          `gorm:"foreignKey:PropertyID" json:"-"`
	Recipients  []NoticeRecipient  `gorm:"foreignKey:NoticeID" json:"-"`
	Attachments []NoticeAttachment `gorm:"foreignKey:NoticeID" json:"attachments,omitempty"`
}

func (Notice) TableName() string {
	return "notices"
}

// Active reports whether the notice is visible to its audience at the given
// instant: published, past its publish_at if set, and not expired.
func (n *Notice) Active(at time.Time) bool {
	if !n.Published {
		return false
	}
	if n.PublishAt != nil && at.Before(*n.PublishAt) {
		return false
	}
	if n.ExpiresAt != nil && !at.Before(*n.ExpiresAt) {
		return false
	}
	return true
}

func (n *Notice) Frozen() bool {
	return domain.AudienceType(n.AudienceType).Frozen()
}

// NoticeRecipient is one row of a frozen audience snapshot. UnitID is set
// when the notice targeted specific units so the snapshot survives later
// tenant reassignment.
type NoticeRecipient struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	NoticeID  uint      `gorm:"not null;index:idx_recipient_notice_tenant,unique" json:"notice_id"`
	TenantID  uint      `gorm:"not null;index:idx_recipient_notice_tenant,unique" json:"tenant_id"`
	UnitID    *uint     `json:"unit_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (NoticeRecipient) TableName() string {
	return "notice_recipients"
}

// ReadReceipt marks a notice as read by a user. Absence of a row means
// unread; marking is idempotent on the (notice, user) pair.
type ReadReceipt struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	NoticeID uint      `gorm:"not null;index:idx_receipt_notice_user,unique" json:"notice_id"`
	UserID   uint      `gorm:"not null;index:idx_receipt_notice_user,unique" json:"user_id"`
	ReadAt   time.Time `gorm:"not null" json:"read_at"`
}

func (ReadReceipt) TableName() string {
	return "read_receipts"
}

// NoticeAttachment is a file uploaded to Cloudinary and linked to a notice.
type NoticeAttachment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	NoticeID    uint      `gorm:"not null;index" json:"notice_id"`
	URL         string    `gorm:"size:500;not null" json:"url"`
	PublicID    string    `gorm:"size:255" json:"public_id"`
	Filename    string    `gorm:"size:255" json:"filename"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentType string    `gorm:"size:100" json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

func (NoticeAttachment) TableName() string {
	return "notice_attachments"
}
