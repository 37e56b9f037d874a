package service

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"haley-companion-be/internal/dto"
	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/pkg/apperror"
	"haley-companion-be/internal/pkg/clock"
	"haley-companion-be/internal/pkg/metrics"
	"haley-companion-be/internal/pkg/objectstore"
	"haley-companion-be/internal/repository/memory"
	"haley-companion-be/internal/repository/specification"
	"haley-companion-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IThumbnailService interface {
	ListPublic(ctx context.Context) ([]*dto.ThumbnailResponse, error)
	ListByUser(ctx context.Context, userId uuid.UUID) ([]*dto.ThumbnailResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateThumbnailRequest) (*dto.ThumbnailResponse, error)
	// Update only touches thumbnails owned by userId.
	Update(ctx context.Context, id, userId uuid.UUID, req *dto.UpdateThumbnailRequest) (*dto.ThumbnailResponse, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	SignedUploadURL(ctx context.Context, userId uuid.UUID, req *dto.SignedURLRequest) (*dto.SignedURLResponse, error)
}

type thumbnailService struct {
	uowFactory unitofwork.RepositoryFactory
	feedCache  *memory.FeedCache
	presigner  objectstore.Presigner
	clock      clock.Clock
	metrics    *metrics.Metrics
}

func NewThumbnailService(
	uowFactory unitofwork.RepositoryFactory,
	feedCache *memory.FeedCache,
	presigner objectstore.Presigner,
	clk clock.Clock,
	m *metrics.Metrics,
) IThumbnailService {
	return &thumbnailService{
		uowFactory: uowFactory,
		feedCache:  feedCache,
		presigner:  presigner,
		clock:      clk,
		metrics:    m,
	}
}

// ListPublic serves the feed from cache when possible. View counts in a
// cached feed may lag by up to the cache TTL.
func (s *thumbnailService) ListPublic(ctx context.Context) ([]*dto.ThumbnailResponse, error) {
	if cached, ok := s.feedCache.GetPublic(); ok {
		s.metrics.RecordCacheHit()
		return dto.NewThumbnailResponses(cached), nil
	}
	s.metrics.RecordCacheMiss()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	thumbs, err := uow.ThumbnailRepository().FindAll(ctx,
		specification.PublicOnly{},
		specification.NewestFirst{},
	)
	if err != nil {
		return nil, apperror.Storage("list thumbnails", err)
	}

	s.feedCache.SavePublic(thumbs)
	return dto.NewThumbnailResponses(thumbs), nil
}

func (s *thumbnailService) ListByUser(ctx context.Context, userId uuid.UUID) ([]*dto.ThumbnailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	thumbs, err := uow.ThumbnailRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.NewestFirst{},
	)
	if err != nil {
		return nil, apperror.Storage("list thumbnails", err)
	}
	return dto.NewThumbnailResponses(thumbs), nil
}

func (s *thumbnailService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateThumbnailRequest) (*dto.ThumbnailResponse, error) {
	thumb := &entity.Thumbnail{
		Uuid:         uuid.New(),
		UserId:       &userId,
		VideoTitle:   req.VideoTitle,
		Prompt:       req.Prompt,
		ModelUsed:    req.ModelUsed,
		ThumbnailURL: req.ThumbnailURL,
		Language:     entity.DefaultThumbnailLanguage,
		Tags:         []string{},
		AiFeedback:   req.AiFeedback,
		CreatedAt:    s.clock.Now(),
	}
	if req.Language != nil {
		thumb.Language = *req.Language
	}
	if req.Rating != nil {
		thumb.Rating = *req.Rating
	}
	if req.IsPublic != nil {
		thumb.IsPublic = *req.IsPublic
	}
	if req.Tags != nil {
		thumb.Tags = req.Tags
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ThumbnailRepository().Create(ctx, thumb); err != nil {
		return nil, ownerError("create thumbnail", err)
	}

	if thumb.IsPublic {
		s.feedCache.Invalidate()
	}
	return dto.NewThumbnailResponse(thumb), nil
}

func (s *thumbnailService) Update(ctx context.Context, id, userId uuid.UUID, req *dto.UpdateThumbnailRequest) (*dto.ThumbnailResponse, error) {
	patch := entity.ThumbnailPatch{
		VideoTitle:   req.VideoTitle,
		Prompt:       req.Prompt,
		ModelUsed:    req.ModelUsed,
		ThumbnailURL: req.ThumbnailURL,
		Language:     req.Language,
		Rating:       req.Rating,
		IsPublic:     req.IsPublic,
		Tags:         req.Tags,
		AiFeedback:   req.AiFeedback,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ThumbnailRepository()

	matched, err := repo.PatchOwned(ctx, id, userId, patch)
	if err != nil {
		return nil, apperror.Storage("update thumbnail", err)
	}
	if matched == 0 {
		return nil, apperror.NotFound("thumbnail")
	}

	thumb, err := repo.FindOne(ctx, specification.ByUUID{UUID: id})
	if err != nil {
		return nil, apperror.Storage("load thumbnail", err)
	}
	if thumb == nil {
		return nil, apperror.NotFound("thumbnail")
	}

	s.feedCache.Invalidate()
	return dto.NewThumbnailResponse(thumb), nil
}

func (s *thumbnailService) IncrementViews(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	matched, err := uow.ThumbnailRepository().IncrementViews(ctx, id)
	if err != nil {
		return apperror.Storage("increment views", err)
	}
	if matched == 0 {
		return apperror.NotFound("thumbnail")
	}
	return nil
}

func (s *thumbnailService) SignedUploadURL(ctx context.Context, userId uuid.UUID, req *dto.SignedURLRequest) (*dto.SignedURLResponse, error) {
	if s.presigner == nil {
		return nil, apperror.Unavailable("thumbnail storage is not configured")
	}

	name, err := sanitizeFilename(req.Filename)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%d-%s", userId, s.clock.Now().UnixMilli(), name)
	signed, err := s.presigner.PresignUpload(ctx, key, mime.TypeByExtension(filepath.Ext(name)))
	if err != nil {
		return nil, apperror.Unavailable("could not sign upload url")
	}

	return &dto.SignedURLResponse{
		UploadURL: signed.URL,
		PublicURL: signed.PublicURL,
		Path:      key,
		ExpiresAt: signed.ExpiresAt,
	}, nil
}

// sanitizeFilename keeps the last path element and drops whitespace so the
// object key stays inside the user's prefix.
func sanitizeFilename(filename string) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	name = strings.Join(strings.Fields(name), "-")
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", apperror.Validation("filename is invalid")
	}
	return name, nil
}
