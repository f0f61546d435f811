package entity

type SegmentStatus uint32

const (
	SegmentStatusUnknown SegmentStatus = iota
	SegmentStatusNormal
	SegmentStatusDeleted
)

type Segment struct {
	ID          *uint64       `json:"id,omitempty"`
	TenantID    *uint64       `json:"tenant_id,omitempty"`
	Name        *string       `json:"name,omitempty"`
	SegmentDesc *string       `json:"segment_desc,omitempty"`
	Status      SegmentStatus `json:"status,omitempty"`
	CreateTime  *uint64       `json:"create_time,omitempty"`
	UpdateTime  *uint64       `json:"update_time,omitempty"`
}

func (e *Segment) GetID() uint64 {
	if e != nil && e.ID != nil {
		return *e.ID
	}
	return 0
}

func (e *Segment) GetTenantID() uint64 {
	if e != nil && e.TenantID != nil {
		return *e.TenantID
	}
	return 0
}

func (e *Segment) GetName() string {
	if e != nil && e.Name != nil {
		return *e.Name
	}
	return ""
}

func (e *Segment) GetStatus() SegmentStatus {
	if e != nil {
		return e.Status
	}
	return SegmentStatusUnknown
}
