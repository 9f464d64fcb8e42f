package service

import (
	"errors"
	"time"

	"kejani/internal/authz"
	"kejani/internal/domain"
	"kejani/internal/models"
	"kejani/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidAudience = errors.New("invalid audience specification")
)

type NoticeService struct {
	noticeRepo *repository.NoticeRepository
	unitRepo   *repository.UnitRepository
	userRepo   *repository.UserRepository
}

func NewNoticeService(noticeRepo *repository.NoticeRepository, unitRepo *repository.UnitRepository, userRepo *repository.UserRepository) *NoticeService {
	return &NoticeService{noticeRepo: noticeRepo, unitRepo: unitRepo, userRepo: userRepo}
}

type NoticeInput struct {
	Title        string
	Body         string
	Priority     string
	AudienceType string
	PropertyID   uint   // property_tenants only
	UnitIDs      []uint // specific_units only
	TenantIDs    []uint // specific_tenants only
	RequiresAck  bool
	Published    *bool
	PublishAt    *time.Time
	ExpiresAt    *time.Time
}

// Create validates the audience specification against the author's managed
// scope and stores the notice. For specific_units and specific_tenants the
// recipient set is frozen here; the broad audiences stay live queries.
func (s *NoticeService) Create(id *authz.Identity, in NoticeInput) (*models.Notice, error) {
	if d := authz.Check(id, authz.ActionCreateNotice); d != nil {
		return nil, d
	}
	priority := in.Priority
	if priority == "" {
		priority = string(domain.PriorityNormal)
	}
	if !domain.ValidPriority(domain.Priority(priority)) {
		return nil, ErrInvalidPriority
	}
	audience := domain.AudienceType(in.AudienceType)
	if !domain.ValidAudienceType(audience) {
		return nil, ErrInvalidAudience
	}

	n := &models.Notice{
		AuthorID:     id.UserID,
		Title:        in.Title,
		Body:         in.Body,
		Priority:     priority,
		AudienceType: string(audience),
		RequiresAck:  in.RequiresAck,
		Published:    true,
		PublishAt:    in.PublishAt,
		ExpiresAt:    in.ExpiresAt,
	}
	if in.Published != nil {
		n.Published = *in.Published
	}

	var recipients []models.NoticeRecipient
	switch audience {
	case domain.AudienceAllTenants:
		// The author's managed set is the audience definition; nothing to
		// validate and nothing to freeze.

	case domain.AudiencePropertyTenants:
		if in.PropertyID == 0 {
			return nil, ErrInvalidAudience
		}
		if !id.Manages(in.PropertyID) {
			return nil, authz.Deny(authz.DenyOutOfScope, authz.ActionCreateNotice)
		}
		pid := in.PropertyID
		n.PropertyID = &pid

	case domain.AudienceSpecificUnits:
		if len(in.UnitIDs) == 0 {
			return nil, ErrInvalidAudience
		}
		seen := map[uint]bool{}
		for _, unitID := range in.UnitIDs {
			unit, err := s.unitRepo.GetByID(unitID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, authz.Deny(authz.DenyTargetNotFound, authz.ActionCreateNotice)
				}
				return nil, err
			}
			if !id.Manages(unit.PropertyID) {
				return nil, authz.Deny(authz.DenyOutOfScope, authz.ActionCreateNotice)
			}
			// Vacant units contribute no recipient; the notice still
			// references them through the frozen rows of occupied ones.
			if unit.TenantID != nil && !seen[*unit.TenantID] {
				seen[*unit.TenantID] = true
				uid := unit.ID
				recipients = append(recipients, models.NoticeRecipient{TenantID: *unit.TenantID, UnitID: &uid})
			}
		}

	case domain.AudienceSpecificTenants:
		if len(in.TenantIDs) == 0 {
			return nil, ErrInvalidAudience
		}
		seen := map[uint]bool{}
		for _, tenantID := range in.TenantIDs {
			if seen[tenantID] {
				continue
			}
			seen[tenantID] = true
			u, err := s.userRepo.GetByID(tenantID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, authz.Deny(authz.DenyTargetNotFound, authz.ActionCreateNotice)
				}
				return nil, err
			}
			if !u.IsTenant() {
				return nil, domain.Constraint(domain.InvariantNotTenant, u.Username)
			}
			unit, err := s.unitRepo.UnitOfTenant(tenantID)
			if err != nil {
				return nil, err
			}
			// An unassigned tenant is outside every author's scope.
			if unit == nil || !id.Manages(unit.PropertyID) {
				return nil, authz.Deny(authz.DenyOutOfScope, authz.ActionCreateNotice)
			}
			uid := unit.ID
			recipients = append(recipients, models.NoticeRecipient{TenantID: tenantID, UnitID: &uid})
		}
	}

	if err := s.noticeRepo.CreateWithRecipients(n, recipients); err != nil {
		return nil, err
	}
	return n, nil
}

// ListByAuthor returns the caller's own notices, newest first.
func (s *NoticeService) ListByAuthor(id *authz.Identity, limit, offset int) ([]models.Notice, error) {
	if d := authz.Check(id, authz.ActionCreateNotice); d != nil {
		return nil, d
	}
	return s.noticeRepo.ListByAuthor(id.UserID, limit, offset)
}

// Get returns one notice. Authors see their own; tenants see a notice only
// while it is active and currently targets them. Everything else is a
// not-found.
func (s *NoticeService) Get(id *authz.Identity, noticeID uint) (*models.Notice, error) {
	n, err := s.noticeRepo.GetByID(noticeID)
	if err != nil {
		return nil, err
	}
	if id.IsManager() {
		if n.AuthorID != id.UserID {
			return nil, gorm.ErrRecordNotFound
		}
		return n, nil
	}
	if !n.Active(time.Now()) {
		return nil, gorm.ErrRecordNotFound
	}
	in, err := s.noticeRepo.InAudience(n, id.UserID, id.AssignedPropertyID)
	if err != nil {
		return nil, err
	}
	if !in {
		return nil, gorm.ErrRecordNotFound
	}
	return n, nil
}

type NoticeUpdate struct {
	Title       *string
	Body        *string
	Priority    *string
	RequiresAck *bool
	Published   *bool
	PublishAt   *time.Time
	ExpiresAt   *time.Time
}

// Update edits a notice the caller authored. The audience specification is
// immutable after creation; it would desynchronize the frozen snapshot.
func (s *NoticeService) Update(id *authz.Identity, noticeID uint, in NoticeUpdate) (*models.Notice, error) {
	if d := authz.Check(id, authz.ActionUpdateNotice); d != nil {
		return nil, d
	}
	n, err := s.noticeRepo.GetByID(noticeID)
	if err != nil {
		return nil, err
	}
	if n.AuthorID != id.UserID {
		return nil, gorm.ErrRecordNotFound
	}
	if in.Priority != nil {
		if !domain.ValidPriority(domain.Priority(*in.Priority)) {
			return nil, ErrInvalidPriority
		}
		n.Priority = *in.Priority
	}
	if in.Title != nil {
		n.Title = *in.Title
	}
	if in.Body != nil {
		n.Body = *in.Body
	}
	if in.RequiresAck != nil {
		n.RequiresAck = *in.RequiresAck
	}
	if in.Published != nil {
		n.Published = *in.Published
	}
	if in.PublishAt != nil {
		n.PublishAt = in.PublishAt
	}
	if in.ExpiresAt != nil {
		n.ExpiresAt = in.ExpiresAt
	}
	if err := s.noticeRepo.Update(n); err != nil {
		return nil, err
	}
	return n, nil
}

// FeedItem is one row of a tenant's feed: the notice plus their read state.
type FeedItem struct {
	models.Notice
	IsRead bool       `json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}

// Feed assembles the tenant's notice feed: active notices currently
// targeting them, unread first, then priority, then newest.
func (s *NoticeService) Feed(id *authz.Identity, f repository.FeedFilter, limit, offset int) ([]FeedItem, error) {
	if d := authz.Check(id, authz.ActionViewFeed); d != nil {
		return nil, d
	}
	var propertyID uint
	if id.AssignedPropertyID != nil {
		propertyID = *id.AssignedPropertyID
	}
	notices, err := s.noticeRepo.Feed(id.UserID, propertyID, f, time.Now(), limit, offset)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(notices))
	for i, n := range notices {
		ids[i] = n.ID
	}
	receipts, err := s.noticeRepo.ReceiptsForUser(id.UserID, ids)
	if err != nil {
		return nil, err
	}
	readAt := make(map[uint]time.Time, len(receipts))
	for _, r := range receipts {
		readAt[r.NoticeID] = r.ReadAt
	}
	items := make([]FeedItem, len(notices))
	for i, n := range notices {
		items[i] = FeedItem{Notice: n}
		if at, ok := readAt[n.ID]; ok {
			items[i].IsRead = true
			t := at
			items[i].ReadAt = &t
		}
	}
	return items, nil
}

// MarkRead records that the tenant saw the notice. It only succeeds while
// the notice is active and currently resolves into the tenant's audience, so
// read state cannot be fabricated for notices never targeted at them.
// Marking twice is a no-op.
func (s *NoticeService) MarkRead(id *authz.Identity, noticeID uint) error {
	if d := authz.Check(id, authz.ActionMarkNoticeRead); d != nil {
		return d
	}
	n, err := s.noticeRepo.GetByID(noticeID)
	if err != nil {
		return err
	}
	if !n.Active(time.Now()) {
		return gorm.ErrRecordNotFound
	}
	in, err := s.noticeRepo.InAudience(n, id.UserID, id.AssignedPropertyID)
	if err != nil {
		return err
	}
	if !in {
		return authz.Deny(authz.DenyOutOfScope, authz.ActionMarkNoticeRead)
	}
	return s.noticeRepo.InsertReceipt(noticeID, id.UserID, time.Now())
}

// ReadReportRow is one recipient's read state in the author's report.
type ReadReportRow struct {
	TenantID uint       `json:"tenant_id"`
	Username string     `json:"username"`
	Name     string     `json:"name"`
	Read     bool       `json:"read"`
	ReadAt   *time.Time `json:"read_at,omitempty"`
}

// ReadReport summarizes who has read the author's notice. The recipient set
// is resolved under the current audience rules, so for lazy audiences it
// reflects assignments as of now.
type ReadReport struct {
	NoticeID    uint            `json:"notice_id"`
	Recipients  int             `json:"recipients"`
	ReadCount   int             `json:"read_count"`
	ReadPercent float64         `json:"read_percent"`
	Rows        []ReadReportRow `json:"rows"`
}

func (s *NoticeService) ReadReport(id *authz.Identity, noticeID uint) (*ReadReport, error) {
	if d := authz.Check(id, authz.ActionViewReadReport); d != nil {
		return nil, d
	}
	n, err := s.noticeRepo.GetByID(noticeID)
	if err != nil {
		return nil, err
	}
	if n.AuthorID != id.UserID {
		return nil, gorm.ErrRecordNotFound
	}
	recipientIDs, err := s.noticeRepo.ResolveAudience(n)
	if err != nil {
		return nil, err
	}
	receipts, err := s.noticeRepo.ReceiptsFor(noticeID)
	if err != nil {
		return nil, err
	}
	readAt := make(map[uint]time.Time, len(receipts))
	for _, r := range receipts {
		readAt[r.UserID] = r.ReadAt
	}
	users, err := s.userRepo.ListByIDs(recipientIDs)
	if err != nil {
		return nil, err
	}
	report := &ReadReport{NoticeID: noticeID, Recipients: len(recipientIDs), Rows: make([]ReadReportRow, 0, len(users))}
	for _, u := range users {
		row := ReadReportRow{TenantID: u.ID, Username: u.Username, Name: u.FullName()}
		if at, ok := readAt[u.ID]; ok {
			row.Read = true
			t := at
			row.ReadAt = &t
			report.ReadCount++
		}
		report.Rows = append(report.Rows, row)
	}
	if report.Recipients > 0 {
		report.ReadPercent = float64(report.ReadCount) * 100 / float64(report.Recipients)
	}
	return report, nil
}

// Stats returns role-appropriate notice counters: feed counters for tenants,
// authoring counters for managers.
func (s *NoticeService) Stats(id *authz.Identity) (interface{}, error) {
	if id.Role.IsTenant() {
		var propertyID uint
		if id.AssignedPropertyID != nil {
			propertyID = *id.AssignedPropertyID
		}
		return s.noticeRepo.TenantStats(id.UserID, propertyID, time.Now())
	}
	if id.IsManager() {
		return s.noticeRepo.AuthorStats(id.UserID)
	}
	return nil, authz.Deny(authz.DenyRoleNotPermitted, authz.ActionCreateNotice)
}

// AddAttachment links an uploaded file to a notice the caller authored.
func (s *NoticeService) AddAttachment(id *authz.Identity, noticeID uint, a *models.NoticeAttachment) error {
	if d := authz.Check(id, authz.ActionUpdateNotice); d != nil {
		return d
	}
	n, err := s.noticeRepo.GetByID(noticeID)
	if err != nil {
		return err
	}
	if n.AuthorID != id.UserID {
		return gorm.ErrRecordNotFound
	}
	a.NoticeID = noticeID
	return s.noticeRepo.AddAttachment(a)
}
