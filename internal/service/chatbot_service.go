package service

import (
	"context"
	"fmt"
	"time"

	"ai-docchat-be/internal/apperr"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/rag/answer"
	"ai-docchat-be/pkg/rag/rerank"
	"ai-docchat-be/pkg/vectorstore"

	"github.com/google/uuid"
)

const defaultTopK = 5

type IChatbotService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	Ask(ctx context.Context, userId uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
}

type chatbotService struct {
	uowFactory    unitofwork.RepositoryFactory
	vectorManager *vectorstore.Manager
	reranker      *rerank.Reranker // nil when reranking is disabled
	synthesizer   *answer.Synthesizer
	logger        logger.ILogger
}

func NewChatbotService(
	uowFactory unitofwork.RepositoryFactory,
	vectorManager *vectorstore.Manager,
	reranker *rerank.Reranker,
	synthesizer *answer.Synthesizer,
	log logger.ILogger,
) IChatbotService {
	return &chatbotService{
		uowFactory:    uowFactory,
		vectorManager: vectorManager,
		reranker:      reranker,
		synthesizer:   synthesizer,
		logger:        log,
	}
}

func (c *chatbotService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	title := req.Title
	if title == "" {
		title = "New Chat"
	}

	session := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: session.Id, Title: session.Title}, nil
}

func (c *chatbotService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, s := range sessions {
		res = append(res, &dto.GetAllSessionsResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}
	return res, nil
}

func (c *chatbotService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if _, err := c.ownedSession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	messageIds := make([]uuid.UUID, 0, len(messages))
	for _, m := range messages {
		messageIds = append(messageIds, m.Id)
	}

	citations, err := uow.ChatCitationRepository().FindAllByMessageIds(ctx, messageIds)
	if err != nil {
		return nil, err
	}

	citationsByMessage := make(map[uuid.UUID][]dto.CitationDTO)
	for _, cit := range citations {
		citationsByMessage[cit.ChatMessageId] = append(citationsByMessage[cit.ChatMessageId], citationToDTO(cit))
	}

	res := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, m := range messages {
		res = append(res, &dto.GetChatHistoryResponse{
			Id:        m.Id,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			Citations: citationsByMessage[m.Id],
		})
	}
	return res, nil
}

func (c *chatbotService) Ask(ctx context.Context, userId uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session, err := c.ownedSession(ctx, uow, userId, req.ChatSessionId)
	if err != nil {
		return nil, err
	}

	topK := req.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	// Overfetch when reranking so the reranker has candidates to demote.
	fetchK := topK
	if c.reranker != nil {
		fetchK = topK * 2
	}

	hits, err := c.vectorManager.Search(ctx, session.Collection(), req.Question, fetchK)
	if err != nil {
		return nil, err
	}

	if c.reranker != nil && len(hits) > 1 {
		reranked, err := c.reranker.Rerank(ctx, req.Question, hits, topK)
		if err != nil {
			c.logger.Warn("ChatbotService", "Rerank failed, using vector order", map[string]interface{}{
				"session_id": req.ChatSessionId,
				"error":      err.Error(),
			})
		} else {
			hits = reranked
		}
	}
	if len(hits) > topK {
		hits = hits[:topK]
	}

	result, err := c.synthesizer.Answer(ctx, req.Question, hits)
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: req.ChatSessionId,
		Role:          entity.ChatRoleUser,
		Content:       req.Question,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}

	assistantMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: req.ChatSessionId,
		Role:          entity.ChatRoleAssistant,
		Content:       result.Content,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, &assistantMessage); err != nil {
		return nil, err
	}

	citations := referencesToCitations(assistantMessage.Id, result.References)
	if err := uow.ChatCitationRepository().CreateBulk(ctx, citations); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	citationDTOs := make([]dto.CitationDTO, 0, len(result.References))
	for i, ref := range result.References {
		d := citationToDTO(citations[i])
		d.Explanation = ref.Explanation
		citationDTOs = append(citationDTOs, d)
	}

	return &dto.AskResponse{
		ChatSessionId: req.ChatSessionId,
		MessageId:     assistantMessage.Id,
		Answer:        result.Content,
		Citations:     citationDTOs,
		CreatedAt:     assistantMessage.CreatedAt,
	}, nil
}

func (c *chatbotService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session, err := c.ownedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return err
	}

	if err := c.vectorManager.DropSession(ctx, session.Collection()); err != nil {
		return err
	}

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
	)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatCitationRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return err
	}
	for _, d := range documents {
		if err := uow.DocumentRepository().Delete(ctx, d.Id); err != nil {
			return err
		}
	}
	if err := uow.ChatSessionRepository().Delete(ctx, session.Id); err != nil {
		return err
	}

	return uow.Commit()
}

func (c *chatbotService) ownedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, sessionId uuid.UUID) (*entity.ChatSession, error) {
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
	return session, nil
}

func referencesToCitations(messageId uuid.UUID, refs []answer.Reference) []*entity.ChatCitation {
	citations := make([]*entity.ChatCitation, 0, len(refs))
	for _, ref := range refs {
		documentId, err := uuid.Parse(ref.DocumentID)
		if err != nil {
			documentId = uuid.Nil
		}
		citations = append(citations, &entity.ChatCitation{
			Id:            uuid.New(),
			ChatMessageId: messageId,
			DocumentId:    documentId,
			SourceLabel:   ref.SourceID,
			FileName:      ref.FileName,
			ChunkIndex:    ref.ChunkIndex,
			StartChar:     ref.StartChar,
			EndChar:       ref.EndChar,
			Score:         ref.Score,
			Snippet:       ref.Snippet,
			CreatedAt:     time.Now(),
		})
	}
	return citations
}

func citationToDTO(c *entity.ChatCitation) dto.CitationDTO {
	return dto.CitationDTO{
		DocumentId:  c.DocumentId,
		SourceLabel: c.SourceLabel,
		FileName:    c.FileName,
		ChunkIndex:  c.ChunkIndex,
		StartChar:   c.StartChar,
		EndChar:     c.EndChar,
		Score:       c.Score,
		Snippet:     c.Snippet,
	}
}
