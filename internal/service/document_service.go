package service

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"ai-docchat-be/internal/apperr"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/blob"
	"ai-docchat-be/pkg/vectorstore"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Upload(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, file *multipart.FileHeader) (*dto.UploadDocumentResponse, error)
	IngestWeb(ctx context.Context, userId uuid.UUID, req *dto.IngestWebRequest) (*dto.UploadDocumentResponse, error)
	List(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.DocumentResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	blobStore        blob.Store
	vectorManager    *vectorstore.Manager
	logger           logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	blobStore blob.Store,
	vectorManager *vectorstore.Manager,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		blobStore:        blobStore,
		vectorManager:    vectorManager,
		logger:           log,
	}
}

func (s *documentService) Upload(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, file *multipart.FileHeader) (*dto.UploadDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: chat session %s", apperr.ErrNotFound, sessionId)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	objectPath := fmt.Sprintf("%s/%s%s", sessionId, uuid.New(), filepath.Ext(file.Filename))
	contentType := file.Header.Get("Content-Type")
	if _, err := s.blobStore.Upload(ctx, src, objectPath, file.Size, contentType); err != nil {
		return nil, err
	}

	document := entity.Document{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		UserId:        userId,
		FileName:      file.Filename,
		ObjectPath:    objectPath,
		SourceType:    entity.DocumentSourceFile,
		SizeBytes:     file.Size,
		Status:        entity.DocumentStatusPending,
		CreatedAt:     time.Now(),
	}
	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}

	if err := s.publishIngest(ctx, document.Id); err != nil {
		return nil, err
	}

	s.logger.Info("DocumentService", "Document uploaded, ingestion queued", map[string]interface{}{
		"document_id": document.Id,
		"session_id":  sessionId,
		"file_name":   file.Filename,
	})

	return &dto.UploadDocumentResponse{
		Id:       document.Id,
		FileName: document.FileName,
		Status:   document.Status,
	}, nil
}

func (s *documentService) IngestWeb(ctx context.Context, userId uuid.UUID, req *dto.IngestWebRequest) (*dto.UploadDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: req.ChatSessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: chat session %s", apperr.ErrNotFound, req.ChatSessionId)
	}

	document := entity.Document{
		Id:            uuid.New(),
		ChatSessionId: req.ChatSessionId,
		UserId:        userId,
		FileName:      req.URL,
		SourceType:    entity.DocumentSourceWeb,
		SourceURL:     req.URL,
		Status:        entity.DocumentStatusPending,
		CreatedAt:     time.Now(),
	}
	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}

	if err := s.publishIngest(ctx, document.Id); err != nil {
		return nil, err
	}

	return &dto.UploadDocumentResponse{
		Id:       document.Id,
		FileName: document.FileName,
		Status:   document.Status,
	}, nil
}

func (s *documentService) List(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.DocumentResponse, 0, len(documents))
	for _, d := range documents {
		res = append(res, &dto.DocumentResponse{
			Id:            d.Id,
			ChatSessionId: d.ChatSessionId,
			FileName:      d.FileName,
			SourceType:    d.SourceType,
			Status:        d.Status,
			ErrorMessage:  d.ErrorMessage,
			ChunkCount:    d.ChunkCount,
			SizeBytes:     d.SizeBytes,
			CreatedAt:     d.CreatedAt,
			UpdatedAt:     d.UpdatedAt,
		})
	}
	return res, nil
}

func (s *documentService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if document == nil {
		return fmt.Errorf("%w: document %s", apperr.ErrNotFound, id)
	}

	// Vectors first so a failed removal keeps the row visible for retry.
	if err := s.vectorManager.DeleteDocument(ctx, document.ChatSessionId.String(), document.Id.String()); err != nil {
		return err
	}

	if document.ObjectPath != "" {
		if err := s.blobStore.Delete(ctx, document.ObjectPath); err != nil {
			s.logger.Warn("DocumentService", "Failed to delete blob object", map[string]interface{}{
				"document_id": document.Id,
				"object_path": document.ObjectPath,
				"error":       err.Error(),
			})
		}
	}

	return uow.DocumentRepository().Delete(ctx, document.Id)
}

func (s *documentService) publishIngest(ctx context.Context, documentId uuid.UUID) error {
	payload := dto.IngestDocumentPayload{DocumentId: documentId}
	msgJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, msgJson)
}
