package repo

import (
	"context"
	"errors"

	"outreach/entity"
	"outreach/pkg/errutil"
	"outreach/pkg/goutil"

	"gorm.io/gorm"
)

var (
	ErrSegmentNotFound = errutil.NotFoundError(errors.New("segment not found"))
)

type Segment struct {
	ID          *uint64
	TenantID    *uint64
	Name        *string
	SegmentDesc *string
	Status      *uint32
	CreateTime  *uint64
	UpdateTime  *uint64
}

func (m *Segment) TableName() string {
	return "segment_tab"
}

func (m *Segment) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

func (m *Segment) GetStatus() uint32 {
	if m != nil && m.Status != nil {
		return *m.Status
	}
	return 0
}

type SegmentContact struct {
	ID         *uint64
	TenantID   *uint64
	SegmentID  *uint64
	ContactID  *uint64
	CreateTime *uint64
}

func (m *SegmentContact) TableName() string {
	return "segment_contact_tab"
}

func (m *SegmentContact) GetContactID() uint64 {
	if m != nil && m.ContactID != nil {
		return *m.ContactID
	}
	return 0
}

var segmentContactConflictColumns = []string{"segment_id", "contact_id"}

type SegmentRepo interface {
	Create(ctx context.Context, tenantID uint64, segment *entity.Segment) (uint64, error)
	GetByID(ctx context.Context, tenantID, segmentID uint64) (*entity.Segment, error)
	// GetContactIDs pages through the segment's membership in stable
	// id order.
	GetContactIDs(ctx context.Context, tenantID, segmentID uint64, p *entity.Pagination) ([]uint64, *entity.Pagination, error)
	// AddContact is idempotent on (segment_id, contact_id).
	AddContact(ctx context.Context, tenantID, segmentID, contactID uint64) error
}

type segmentRepo struct {
	baseRepo BaseRepo
}

func NewSegmentRepo(_ context.Context, baseRepo BaseRepo) SegmentRepo {
	return &segmentRepo{baseRepo: baseRepo}
}

func (r *segmentRepo) scoped(tenantID uint64) BaseRepo {
	return ScopeToTenant(r.baseRepo, tenantID, 0)
}

func (r *segmentRepo) Create(ctx context.Context, tenantID uint64, segment *entity.Segment) (uint64, error) {
	segmentModel := ToSegmentModel(segment)

	if err := r.scoped(tenantID).Create(ctx, segmentModel); err != nil {
		return 0, err
	}

	segment.ID = segmentModel.ID
	segment.TenantID = segmentModel.TenantID

	return segmentModel.GetID(), nil
}

func (r *segmentRepo) GetByID(ctx context.Context, tenantID, segmentID uint64) (*entity.Segment, error) {
	segment := new(Segment)

	if err := r.scoped(tenantID).Get(ctx, segment, &Filter{
		Conditions: []*Condition{
			{
				Field: "id",
				Value: goutil.Uint64(segmentID),
				Op:    OpEq,
			},
		},
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSegmentNotFound
		}
		return nil, err
	}

	return ToSegment(segment), nil
}

func (r *segmentRepo) GetContactIDs(ctx context.Context, tenantID, segmentID uint64, p *entity.Pagination) ([]uint64, *entity.Pagination, error) {
	res, pNew, err := r.scoped(tenantID).GetMany(ctx, new(SegmentContact), &Filter{
		Conditions: []*Condition{
			{
				Field: "segment_id",
				Value: goutil.Uint64(segmentID),
				Op:    OpEq,
			},
		},
		Pagination: p,
		OrderBy:    "id ASC",
	})
	if err != nil {
		return nil, nil, err
	}

	contactIDs := make([]uint64, 0, len(res))
	for _, m := range res {
		contactIDs = append(contactIDs, m.(*SegmentContact).GetContactID())
	}

	return contactIDs, pNew, nil
}

func (r *segmentRepo) AddContact(ctx context.Context, tenantID, segmentID, contactID uint64) error {
	membership := &SegmentContact{
		SegmentID: goutil.Uint64(segmentID),
		ContactID: goutil.Uint64(contactID),
	}

	return r.scoped(tenantID).CreateIgnoreConflicts(ctx, new(SegmentContact), membership, segmentContactConflictColumns)
}

func ToSegment(segment *Segment) *entity.Segment {
	return &entity.Segment{
		ID:          segment.ID,
		TenantID:    segment.TenantID,
		Name:        segment.Name,
		SegmentDesc: segment.SegmentDesc,
		Status:      entity.SegmentStatus(segment.GetStatus()),
		CreateTime:  segment.CreateTime,
		UpdateTime:  segment.UpdateTime,
	}
}

func ToSegmentModel(segment *entity.Segment) *Segment {
	return &Segment{
		ID:          segment.ID,
		TenantID:    segment.TenantID,
		Name:        segment.Name,
		SegmentDesc: segment.SegmentDesc,
		Status:      goutil.Uint32(uint32(segment.GetStatus())),
		CreateTime:  segment.CreateTime,
		UpdateTime:  segment.UpdateTime,
	}
}
