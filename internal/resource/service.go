package resource

import (
	"context"
	"fmt"
	"time"

	"ResourceShare/internal/apperrors"
	"ResourceShare/internal/notification"
	"ResourceShare/internal/realtime"
	"ResourceShare/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Listing limits.
const (
	DefaultListLimit = 100
	PendingListLimit = 200
)

// Publisher records a notification and mirrors it to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, n *notification.Notification, ev realtime.Event) error
}

// ResourceService handles uploads, listings and moderation.
type ResourceService struct {
	repo          *ResourceRepository
	notifications Publisher
	logger        *zap.Logger
}

// NewResourceService creates a new resource service.
func NewResourceService(repo *ResourceRepository, notifications Publisher, logger *zap.Logger) *ResourceService {
	return &ResourceService{repo: repo, notifications: notifications, logger: logger.Named("resource")}
}

// CreateResource stores a new pending resource and announces it.
func (s *ResourceService) CreateResource(ctx context.Context, req CreateResourceRequest) (*Resource, error) {
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	now := time.Now().UTC()
	res := &Resource{
		Title:        req.Title,
		Description:  req.Description,
		Semester:     req.Semester,
		Subject:      req.Subject,
		Tags:         tags,
		FileURL:      req.FileURL,
		ContentURL:   req.ContentURL,
		UploadedBy:   req.UploadedBy,
		UploaderName: req.UploaderName,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateResource(ctx, res); err != nil {
		return nil, err
	}
	id := res.ID.Hex()
	s.logger.Info("resource uploaded", zap.String("resource_id", id), zap.String("uploaded_by", res.UploadedBy))

	n := &notification.Notification{
		Type:       notification.TypeResourceCreated,
		Message:    fmt.Sprintf("New resource pending: %s", res.Title),
		ResourceID: &id,
		CreatedBy:  &res.UploadedBy,
		Semester:   &res.Semester,
		Subject:    &res.Subject,
	}
	ev := realtime.Event{Name: realtime.EventResourceCreated, ResourceID: id, Title: res.Title}
	if err := s.notifications.Publish(ctx, n, ev); err != nil {
		return nil, err
	}

	return s.mustFind(ctx, res.ID)
}

// ListResources returns resources matching f.
func (s *ResourceService) ListResources(ctx context.Context, f ListFilter) ([]*Resource, error) {
	return s.repo.FindResources(ctx, f)
}

// ListPending returns up to PendingListLimit resources awaiting moderation.
func (s *ResourceService) ListPending(ctx context.Context, semester *int, subject string) ([]*Resource, error) {
	return s.repo.FindResources(ctx, ListFilter{
		Semester: semester,
		Subject:  subject,
		Status:   StatusPending,
		Limit:    PendingListLimit,
	})
}

// ApproveResource moves the resource to approved and announces it. Approving a resource
// that is no longer pending returns its current state without writing or announcing.
func (s *ResourceService) ApproveResource(ctx context.Context, id string, req ApproveRequest) (*Resource, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, apperrors.InvalidIdentifier("Invalid id")
	}
	current, err := s.repo.FindResourceByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.NotFound("Resource not found")
	}
	if current.Status == StatusApproved {
		return current, nil
	}

	approved, err := s.repo.MarkApproved(ctx, oid, req.ApprovedBy, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	updated, err := s.mustFind(ctx, oid)
	if err != nil {
		return nil, err
	}
	if !approved {
		// another moderator got there first
		return updated, nil
	}
	s.logger.Info("resource approved", zap.String("resource_id", id), zap.String("approved_by", req.ApprovedBy))

	n := &notification.Notification{
		Type:       notification.TypeResourceApproved,
		Message:    fmt.Sprintf("Resource approved: %s", updated.Title),
		ResourceID: &id,
		CreatedBy:  &req.ApprovedBy,
		Semester:   &updated.Semester,
		Subject:    &updated.Subject,
	}
	ev := realtime.Event{Name: realtime.EventResourceApproved, ResourceID: id}
	if err := s.notifications.Publish(ctx, n, ev); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ResourceService) mustFind(ctx context.Context, id primitive.ObjectID) (*Resource, error) {
	res, err := s.repo.FindResourceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, apperrors.NotFound("Resource not found")
	}
	return res, nil
}
