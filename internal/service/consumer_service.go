package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-docchat-be/internal/apperr"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/blob"
	"ai-docchat-be/pkg/rag/chunker"
	"ai-docchat-be/pkg/rag/converter"
	"ai-docchat-be/pkg/rag/sanitize"
	"ai-docchat-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	uowFactory    unitofwork.RepositoryFactory
	blobStore     blob.Store
	vectorManager *vectorstore.Manager
	logger        logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	blobStore blob.Store,
	vectorManager *vectorstore.Manager,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		uowFactory:    uowFactory,
		blobStore:     blobStore,
		vectorManager: vectorManager,
		logger:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IngestDocumentPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal ingest message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("ConsumerService", "Processing document ingestion", map[string]interface{}{"document_id": payload.DocumentId})

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		cs.logger.Error("ConsumerService", "Failed to load document", map[string]interface{}{"document_id": payload.DocumentId, "error": err.Error()})
		msg.Nack() // Retriable
		return
	}
	if document == nil {
		cs.logger.Warn("ConsumerService", "Document no longer exists, dropping message", map[string]interface{}{"document_id": payload.DocumentId})
		msg.Ack()
		return
	}

	chunkCount, err := cs.ingest(ctx, document)
	if err != nil {
		// Conversion problems are terminal for this document; everything
		// else (storage, embedding, index) is worth a retry.
		if errors.Is(err, apperr.ErrUnsupportedFormat) || errors.Is(err, apperr.ErrConversion) || errors.Is(err, apperr.ErrNotFound) {
			cs.markFailed(ctx, uow, document.Id, err)
			msg.Ack()
			return
		}
		cs.logger.Error("ConsumerService", "Ingestion failed, will retry", map[string]interface{}{"document_id": document.Id, "error": err.Error()})
		msg.Nack()
		return
	}

	document, err = uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil || document == nil {
		cs.logger.Warn("ConsumerService", "Document disappeared after indexing", map[string]interface{}{"document_id": payload.DocumentId})
		msg.Ack()
		return
	}

	document.Status = entity.DocumentStatusIndexed
	document.ChunkCount = chunkCount
	document.ErrorMessage = ""
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		cs.logger.Error("ConsumerService", "Failed to mark document indexed", map[string]interface{}{"document_id": document.Id, "error": err.Error()})
		msg.Nack()
		return
	}

	cs.logger.Info("ConsumerService", "Document indexed", map[string]interface{}{"document_id": document.Id, "chunks": chunkCount})
	msg.Ack()
}

// ingest extracts, chunks and indexes one document. It returns the
// number of chunks written to the session collection.
func (cs *consumerService) ingest(ctx context.Context, document *entity.Document) (int, error) {
	docs, err := cs.extract(ctx, document)
	if err != nil {
		return 0, err
	}

	contents := make([]string, 0, len(docs))
	for _, d := range docs {
		contents = append(contents, d.Content)
	}
	fullText := strings.Join(contents, "\n\n")
	if strings.TrimSpace(fullText) == "" {
		return 0, fmt.Errorf("%w: no text extracted from %s", apperr.ErrConversion, document.FileName)
	}

	chunks := chunker.Split(fullText, chunker.DefaultChunkSize, chunker.DefaultOverlap)

	indexed := make([]vectorstore.IndexedChunk, 0, len(chunks))
	for _, c := range chunks {
		meta := sanitize.Metadata(map[string]interface{}{
			"document_id":     document.Id,
			"chat_session_id": document.ChatSessionId,
			"file_name":       document.FileName,
			"source":          document.SourceURL,
			"chunk_index":     c.Index,
			"start_char":      c.Start,
			"end_char":        c.End,
			"ingested_at":     time.Now(),
		})
		indexed = append(indexed, vectorstore.IndexedChunk{
			ID:       uuid.New().String(),
			Content:  c.Text,
			Metadata: meta,
		})
	}

	if err := cs.vectorManager.AddChunks(ctx, document.ChatSessionId.String(), indexed); err != nil {
		return 0, err
	}
	return len(indexed), nil
}

func (cs *consumerService) extract(ctx context.Context, document *entity.Document) ([]converter.Document, error) {
	metadata := map[string]interface{}{
		"file_name": document.FileName,
	}

	switch document.SourceType {
	case entity.DocumentSourceWeb:
		conv, err := converter.New(converter.KindWeb)
		if err != nil {
			return nil, err
		}
		return conv.Convert(ctx, document.SourceURL, metadata)

	case entity.DocumentSourceAPI:
		conv, err := converter.New(converter.KindAPI)
		if err != nil {
			return nil, err
		}
		return conv.Convert(ctx, document.SourceURL, metadata)

	default:
		tmpPath, cleanup, err := cs.downloadToTemp(ctx, document)
		if err != nil {
			return nil, err
		}
		defer cleanup()

		conv, err := converter.New(converter.KindFile)
		if err != nil {
			return nil, err
		}
		return conv.Convert(ctx, tmpPath, metadata)
	}
}

func (cs *consumerService) downloadToTemp(ctx context.Context, document *entity.Document) (string, func(), error) {
	reader, err := cs.blobStore.Download(ctx, document.ObjectPath)
	if err != nil {
		return "", nil, err
	}
	defer reader.Close()

	tmp, err := os.CreateTemp("", "ingest-*"+filepath.Ext(document.FileName))
	if err != nil {
		return "", nil, err
	}

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, err
	}

	cleanup := func() { os.Remove(tmp.Name()) }
	return tmp.Name(), cleanup, nil
}

func (cs *consumerService) markFailed(ctx context.Context, uow unitofwork.UnitOfWork, documentId uuid.UUID, cause error) {
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil || document == nil {
		return
	}
	document.Status = entity.DocumentStatusFailed
	document.ErrorMessage = cause.Error()
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		cs.logger.Error("ConsumerService", "Failed to mark document failed", map[string]interface{}{"document_id": documentId, "error": err.Error()})
	}
}
