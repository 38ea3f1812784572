package unitofwork

import (
	"context"

	"ai-docchat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	ChatCitationRepository() contract.ChatCitationRepository
	DocumentRepository() contract.DocumentRepository
	QuizRepository() contract.QuizRepository
	QuizQuestionRepository() contract.QuizQuestionRepository
	FlashcardSetRepository() contract.FlashcardSetRepository
	FlashcardRepository() contract.FlashcardRepository
}
