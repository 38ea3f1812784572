package service

import (
	"context"
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
	"ai-docchat-be/pkg/events"
	pktNats "ai-docchat-be/pkg/nats"
	"ai-docchat-be/pkg/rag/converter"
	"ai-docchat-be/pkg/studio"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

const (
	studioItemQuiz         = "quiz"
	studioItemFlashcardSet = "flashcard_set"

	jobTimeout = 10 * time.Minute
)

type IStudioService interface {
	CreateQuiz(ctx context.Context, userId uuid.UUID, req *dto.CreateQuizRequest) (*dto.QuizResponse, error)
	GetQuizzes(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.QuizResponse, error)
	GetQuiz(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.QuizDetailResponse, error)
	DeleteQuiz(ctx context.Context, userId uuid.UUID, id uuid.UUID) error

	CreateFlashcardSet(ctx context.Context, userId uuid.UUID, req *dto.CreateFlashcardSetRequest) (*dto.FlashcardSetResponse, error)
	GetFlashcardSets(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.FlashcardSetResponse, error)
	GetFlashcardSet(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.FlashcardSetDetailResponse, error)
	DeleteFlashcardSet(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type studioService struct {
	uowFactory         unitofwork.RepositoryFactory
	blobStore          blob.Store
	quizGenerator      *studio.QuizGenerator
	flashcardGenerator *studio.FlashcardGenerator
	eventPublisher     *pktNats.Publisher
	pool               *ants.Pool
	logger             logger.ILogger
}

func NewStudioService(
	uowFactory unitofwork.RepositoryFactory,
	blobStore blob.Store,
	quizGenerator *studio.QuizGenerator,
	flashcardGenerator *studio.FlashcardGenerator,
	eventPublisher *pktNats.Publisher,
	pool *ants.Pool,
	log logger.ILogger,
) IStudioService {
	return &studioService{
		uowFactory:         uowFactory,
		blobStore:          blobStore,
		quizGenerator:      quizGenerator,
		flashcardGenerator: flashcardGenerator,
		eventPublisher:     eventPublisher,
		pool:               pool,
		logger:             log,
	}
}

// Quiz operations

func (s *studioService) CreateQuiz(ctx context.Context, userId uuid.UUID, req *dto.CreateQuizRequest) (*dto.QuizResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	documents, err := s.ownedDocuments(ctx, uow, userId, req.ChatSessionId, req.DocumentIds)
	if err != nil {
		return nil, err
	}

	quizType := req.QuizType
	if quizType == "" {
		quizType = studio.QuizMixed
	}
	numQuestions := req.NumQuestions
	if numQuestions <= 0 {
		numQuestions = 10
	}
	title := req.Title
	if title == "" {
		title = deriveTitle("Quiz", documents)
	}

	quiz := entity.Quiz{
		Id:            uuid.New(),
		ChatSessionId: req.ChatSessionId,
		UserId:        userId,
		Title:         title,
		QuizType:      quizType,
		Status:        entity.GenerationStatusPending,
		DocumentIds:   req.DocumentIds,
		NumQuestions:  numQuestions,
		CreatedAt:     time.Now(),
	}
	if err := uow.QuizRepository().Create(ctx, &quiz); err != nil {
		return nil, err
	}

	quizId := quiz.Id
	if err := s.pool.Submit(func() { s.runQuizJob(quizId) }); err != nil {
		return nil, err
	}

	return quizToDTO(&quiz), nil
}

func (s *studioService) runQuizJob(quizId uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	quiz, err := uow.QuizRepository().FindOne(ctx, specification.ByID{ID: quizId})
	if err != nil || quiz == nil {
		s.logger.Error("StudioService", "Quiz vanished before generation", map[string]interface{}{"quiz_id": quizId})
		return
	}

	quiz.Status = entity.GenerationStatusGenerating
	if err := uow.QuizRepository().Update(ctx, quiz); err != nil {
		s.logger.Error("StudioService", "Failed to mark quiz generating", map[string]interface{}{"quiz_id": quizId, "error": err.Error()})
		return
	}

	content, err := s.aggregateContent(ctx, uow, quiz.ChatSessionId, quiz.DocumentIds)
	if err != nil {
		s.failQuiz(ctx, quizId, err)
		return
	}

	questions, err := s.quizGenerator.GenerateQuestions(ctx, content, quiz.QuizType, quiz.NumQuestions)
	if err != nil {
		s.failQuiz(ctx, quizId, err)
		return
	}

	// Re-fetch before the terminal write; the quiz may have been deleted
	// while the model was generating.
	quiz, err = uow.QuizRepository().FindOne(ctx, specification.ByID{ID: quizId})
	if err != nil || quiz == nil {
		s.logger.Warn("StudioService", "Quiz deleted during generation, dropping result", map[string]interface{}{"quiz_id": quizId})
		return
	}

	rows := make([]*entity.QuizQuestion, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, &entity.QuizQuestion{
			Id:             uuid.New(),
			QuizId:         quiz.Id,
			QuestionText:   q.QuestionText,
			QuestionType:   q.QuestionType,
			Options:        q.Options,
			CorrectAnswers: q.CorrectAnswers,
			Explanation:    q.Explanation,
			OrderIndex:     q.OrderIndex,
		})
	}

	if err := uow.Begin(ctx); err != nil {
		s.failQuiz(ctx, quizId, err)
		return
	}
	defer uow.Rollback()

	if err := uow.QuizQuestionRepository().CreateBulk(ctx, rows); err != nil {
		s.failQuiz(ctx, quizId, err)
		return
	}

	quiz.Status = entity.GenerationStatusCompleted
	quiz.ErrorMessage = ""
	if err := uow.QuizRepository().Update(ctx, quiz); err != nil {
		s.failQuiz(ctx, quizId, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.failQuiz(ctx, quizId, err)
		return
	}

	s.notify(ctx, quiz.UserId, quiz.ChatSessionId, studioItemQuiz, quiz.Id, entity.GenerationStatusCompleted)
	s.logger.Info("StudioService", "Quiz generated", map[string]interface{}{"quiz_id": quizId, "questions": len(rows)})
}

// failQuiz marks the quiz failed exactly once. Secondary failures are
// logged and swallowed, the job must not loop.
func (s *studioService) failQuiz(ctx context.Context, quizId uuid.UUID, cause error) {
	s.logger.Error("StudioService", "Quiz generation failed", map[string]interface{}{"quiz_id": quizId, "error": cause.Error()})

	uow := s.uowFactory.NewUnitOfWork(ctx)
	quiz, err := uow.QuizRepository().FindOne(ctx, specification.ByID{ID: quizId})
	if err != nil || quiz == nil {
		return
	}
	quiz.Status = entity.GenerationStatusFailed
	quiz.ErrorMessage = cause.Error()
	if err := uow.QuizRepository().Update(ctx, quiz); err != nil {
		s.logger.Error("StudioService", "Failed to persist quiz failure", map[string]interface{}{"quiz_id": quizId, "error": err.Error()})
		return
	}
	s.notify(ctx, quiz.UserId, quiz.ChatSessionId, studioItemQuiz, quiz.Id, entity.GenerationStatusFailed)
}

func (s *studioService) GetQuizzes(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.QuizResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	quizzes, err := uow.QuizRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.QuizResponse, 0, len(quizzes))
	for _, q := range quizzes {
		res = append(res, quizToDTO(q))
	}
	return res, nil
}

func (s *studioService) GetQuiz(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.QuizDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	quiz, err := uow.QuizRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, fmt.Errorf("%w: quiz %s", apperr.ErrNotFound, id)
	}

	questions, err := uow.QuizQuestionRepository().FindAllByQuizId(ctx, quiz.Id)
	if err != nil {
		return nil, err
	}

	questionDTOs := make([]dto.QuizQuestionDTO, 0, len(questions))
	for _, q := range questions {
		questionDTOs = append(questionDTOs, dto.QuizQuestionDTO{
			Id:             q.Id,
			QuestionText:   q.QuestionText,
			QuestionType:   q.QuestionType,
			Options:        q.Options,
			CorrectAnswers: q.CorrectAnswers,
			Explanation:    q.Explanation,
			OrderIndex:     q.OrderIndex,
		})
	}

	return &dto.QuizDetailResponse{
		QuizResponse: *quizToDTO(quiz),
		Questions:    questionDTOs,
	}, nil
}

func (s *studioService) DeleteQuiz(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	quiz, err := uow.QuizRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if quiz == nil {
		return fmt.Errorf("%w: quiz %s", apperr.ErrNotFound, id)
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.QuizQuestionRepository().DeleteByQuizId(ctx, quiz.Id); err != nil {
		return err
	}
	if err := uow.QuizRepository().Delete(ctx, quiz.Id); err != nil {
		return err
	}
	return uow.Commit()
}

// Flashcard operations

func (s *studioService) CreateFlashcardSet(ctx context.Context, userId uuid.UUID, req *dto.CreateFlashcardSetRequest) (*dto.FlashcardSetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	documents, err := s.ownedDocuments(ctx, uow, userId, req.ChatSessionId, req.DocumentIds)
	if err != nil {
		return nil, err
	}

	numCards := req.NumCards
	if numCards <= 0 {
		numCards = 20
	}
	title := req.Title
	if title == "" {
		title = deriveTitle("Flashcards", documents)
	}

	set := entity.FlashcardSet{
		Id:            uuid.New(),
		ChatSessionId: req.ChatSessionId,
		UserId:        userId,
		Title:         title,
		Status:        entity.GenerationStatusPending,
		DocumentIds:   req.DocumentIds,
		NumCards:      numCards,
		CreatedAt:     time.Now(),
	}
	if err := uow.FlashcardSetRepository().Create(ctx, &set); err != nil {
		return nil, err
	}

	setId := set.Id
	if err := s.pool.Submit(func() { s.runFlashcardJob(setId) }); err != nil {
		return nil, err
	}

	return flashcardSetToDTO(&set), nil
}

func (s *studioService) runFlashcardJob(setId uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	set, err := uow.FlashcardSetRepository().FindOne(ctx, specification.ByID{ID: setId})
	if err != nil || set == nil {
		s.logger.Error("StudioService", "Flashcard set vanished before generation", map[string]interface{}{"set_id": setId})
		return
	}

	set.Status = entity.GenerationStatusGenerating
	if err := uow.FlashcardSetRepository().Update(ctx, set); err != nil {
		s.logger.Error("StudioService", "Failed to mark flashcard set generating", map[string]interface{}{"set_id": setId, "error": err.Error()})
		return
	}

	content, err := s.aggregateContent(ctx, uow, set.ChatSessionId, set.DocumentIds)
	if err != nil {
		s.failFlashcardSet(ctx, setId, err)
		return
	}

	cards, err := s.flashcardGenerator.GenerateFlashcards(ctx, content, set.NumCards)
	if err != nil {
		s.failFlashcardSet(ctx, setId, err)
		return
	}

	set, err = uow.FlashcardSetRepository().FindOne(ctx, specification.ByID{ID: setId})
	if err != nil || set == nil {
		s.logger.Warn("StudioService", "Flashcard set deleted during generation, dropping result", map[string]interface{}{"set_id": setId})
		return
	}

	rows := make([]*entity.Flashcard, 0, len(cards))
	for _, card := range cards {
		rows = append(rows, &entity.Flashcard{
			Id:             uuid.New(),
			FlashcardSetId: set.Id,
			FrontText:      card.FrontText,
			BackText:       card.BackText,
			OrderIndex:     card.OrderIndex,
		})
	}

	if err := uow.Begin(ctx); err != nil {
		s.failFlashcardSet(ctx, setId, err)
		return
	}
	defer uow.Rollback()

	if err := uow.FlashcardRepository().CreateBulk(ctx, rows); err != nil {
		s.failFlashcardSet(ctx, setId, err)
		return
	}

	set.Status = entity.GenerationStatusCompleted
	set.ErrorMessage = ""
	if err := uow.FlashcardSetRepository().Update(ctx, set); err != nil {
		s.failFlashcardSet(ctx, setId, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.failFlashcardSet(ctx, setId, err)
		return
	}

	s.notify(ctx, set.UserId, set.ChatSessionId, studioItemFlashcardSet, set.Id, entity.GenerationStatusCompleted)
	s.logger.Info("StudioService", "Flashcard set generated", map[string]interface{}{"set_id": setId, "cards": len(rows)})
}

func (s *studioService) failFlashcardSet(ctx context.Context, setId uuid.UUID, cause error) {
	s.logger.Error("StudioService", "Flashcard generation failed", map[string]interface{}{"set_id": setId, "error": cause.Error()})

	uow := s.uowFactory.NewUnitOfWork(ctx)
	set, err := uow.FlashcardSetRepository().FindOne(ctx, specification.ByID{ID: setId})
	if err != nil || set == nil {
		return
	}
	set.Status = entity.GenerationStatusFailed
	set.ErrorMessage = cause.Error()
	if err := uow.FlashcardSetRepository().Update(ctx, set); err != nil {
		s.logger.Error("StudioService", "Failed to persist flashcard failure", map[string]interface{}{"set_id": setId, "error": err.Error()})
		return
	}
	s.notify(ctx, set.UserId, set.ChatSessionId, studioItemFlashcardSet, set.Id, entity.GenerationStatusFailed)
}

func (s *studioService) GetFlashcardSets(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.FlashcardSetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sets, err := uow.FlashcardSetRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.FlashcardSetResponse, 0, len(sets))
	for _, set := range sets {
		res = append(res, flashcardSetToDTO(set))
	}
	return res, nil
}

func (s *studioService) GetFlashcardSet(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.FlashcardSetDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	set, err := uow.FlashcardSetRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, fmt.Errorf("%w: flashcard set %s", apperr.ErrNotFound, id)
	}

	cards, err := uow.FlashcardRepository().FindAllBySetId(ctx, set.Id)
	if err != nil {
		return nil, err
	}

	cardDTOs := make([]dto.FlashcardDTO, 0, len(cards))
	for _, c := range cards {
		cardDTOs = append(cardDTOs, dto.FlashcardDTO{
			Id:         c.Id,
			FrontText:  c.FrontText,
			BackText:   c.BackText,
			OrderIndex: c.OrderIndex,
		})
	}

	return &dto.FlashcardSetDetailResponse{
		FlashcardSetResponse: *flashcardSetToDTO(set),
		Cards:                cardDTOs,
	}, nil
}

func (s *studioService) DeleteFlashcardSet(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	set, err := uow.FlashcardSetRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if set == nil {
		return fmt.Errorf("%w: flashcard set %s", apperr.ErrNotFound, id)
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.FlashcardRepository().DeleteBySetId(ctx, set.Id); err != nil {
		return err
	}
	if err := uow.FlashcardSetRepository().Delete(ctx, set.Id); err != nil {
		return err
	}
	return uow.Commit()
}

// Shared helpers

func (s *studioService) ownedDocuments(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, sessionId uuid.UUID, documentIds []uuid.UUID) ([]*entity.Document, error) {
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

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByIDs{IDs: documentIds},
		specification.ByChatSessionID{ChatSessionID: sessionId},
	)
	if err != nil {
		return nil, err
	}
	if len(documents) == 0 {
		return nil, fmt.Errorf("%w: no documents found in session %s", apperr.ErrNotFound, sessionId)
	}
	return documents, nil
}

// aggregateContent loads and extracts every source document. A single
// failing document is skipped; the job only fails when nothing could
// be read at all.
func (s *studioService) aggregateContent(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID, documentIds []uuid.UUID) (string, error) {
	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByIDs{IDs: documentIds},
		specification.ByChatSessionID{ChatSessionID: sessionId},
	)
	if err != nil {
		return "", err
	}
	if len(documents) == 0 {
		return "", fmt.Errorf("%w: no documents found", apperr.ErrNotFound)
	}

	parts := make([]string, 0, len(documents))
	for _, document := range documents {
		content, err := s.extractDocument(ctx, document)
		if err != nil {
			s.logger.Warn("StudioService", "Skipping unreadable document", map[string]interface{}{
				"document_id": document.Id,
				"error":       err.Error(),
			})
			continue
		}
		parts = append(parts, fmt.Sprintf("=== %s ===\n%s", document.FileName, content))
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("%w: all source documents failed to load", apperr.ErrConversion)
	}

	// The generators truncate to their prompt budget; handing them the
	// full text avoids stacking a second truncation notice.
	return strings.Join(parts, "\n\n"), nil
}

func (s *studioService) extractDocument(ctx context.Context, document *entity.Document) (string, error) {
	switch document.SourceType {
	case entity.DocumentSourceWeb, entity.DocumentSourceAPI:
		kind := converter.KindWeb
		if document.SourceType == entity.DocumentSourceAPI {
			kind = converter.KindAPI
		}
		conv, err := converter.New(kind)
		if err != nil {
			return "", err
		}
		docs, err := conv.Convert(ctx, document.SourceURL, nil)
		if err != nil {
			return "", err
		}
		return joinContents(docs), nil

	default:
		reader, err := s.blobStore.Download(ctx, document.ObjectPath)
		if err != nil {
			return "", err
		}
		defer reader.Close()

		tmp, err := os.CreateTemp("", "studio-*"+filepath.Ext(document.FileName))
		if err != nil {
			return "", err
		}
		defer os.Remove(tmp.Name())

		if _, err := io.Copy(tmp, reader); err != nil {
			tmp.Close()
			return "", err
		}
		if err := tmp.Close(); err != nil {
			return "", err
		}

		conv, err := converter.New(converter.KindFile)
		if err != nil {
			return "", err
		}
		docs, err := conv.Convert(ctx, tmp.Name(), nil)
		if err != nil {
			return "", err
		}
		return joinContents(docs), nil
	}
}

func (s *studioService) notify(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, itemType string, itemId uuid.UUID, status string) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.New(events.TypeStudioItemsUpdated, map[string]interface{}{
		"user_id":         userId.String(),
		"chat_session_id": sessionId.String(),
		"item_type":       itemType,
		"item_id":         itemId.String(),
		"status":          status,
	})
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("StudioService", "Failed to publish studio update event", map[string]interface{}{
			"item_id": itemId,
			"error":   err.Error(),
		})
	}
}

func joinContents(docs []converter.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, d.Content)
	}
	return strings.Join(parts, "\n\n")
}

func deriveTitle(prefix string, documents []*entity.Document) string {
	if len(documents) == 0 {
		return prefix
	}
	title := fmt.Sprintf("%s: %s", prefix, documents[0].FileName)
	if len(documents) > 1 {
		title = fmt.Sprintf("%s +%d more", title, len(documents)-1)
	}
	return title
}

func quizToDTO(q *entity.Quiz) *dto.QuizResponse {
	return &dto.QuizResponse{
		Id:            q.Id,
		ChatSessionId: q.ChatSessionId,
		Title:         q.Title,
		QuizType:      q.QuizType,
		Status:        q.Status,
		NumQuestions:  q.NumQuestions,
		ErrorMessage:  q.ErrorMessage,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}

func flashcardSetToDTO(set *entity.FlashcardSet) *dto.FlashcardSetResponse {
	return &dto.FlashcardSetResponse{
		Id:            set.Id,
		ChatSessionId: set.ChatSessionId,
		Title:         set.Title,
		Status:        set.Status,
		NumCards:      set.NumCards,
		ErrorMessage:  set.ErrorMessage,
		CreatedAt:     set.CreatedAt,
		UpdatedAt:     set.UpdatedAt,
	}
}
