package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/contract"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/llm"

	"github.com/google/uuid"
)

// memStore is a single in-memory backing store shared by every fake
// repository, so a unit of work built on it sees consistent data.
type memStore struct {
	mu sync.Mutex

	sessions  map[uuid.UUID]*entity.ChatSession
	messages  []*entity.ChatMessage
	citations []*entity.ChatCitation
	documents map[uuid.UUID]*entity.Document
	quizzes   map[uuid.UUID]*entity.Quiz
	questions []*entity.QuizQuestion
	sets      map[uuid.UUID]*entity.FlashcardSet
	cards     []*entity.Flashcard

	failQuestionBulk bool
	failCardBulk     bool

	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{
		sessions:  map[uuid.UUID]*entity.ChatSession{},
		documents: map[uuid.UUID]*entity.Document{},
		quizzes:   map[uuid.UUID]*entity.Quiz{},
		sets:      map[uuid.UUID]*entity.FlashcardSet{},
	}
}

func (s *memStore) quizStatus(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q, ok := s.quizzes[id]; ok {
		return q.Status
	}
	return ""
}

func (s *memStore) setStatus(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.sets[id]; ok {
		return set.Status
	}
	return ""
}

func (s *memStore) questionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

func (s *memStore) setError(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.sets[id]; ok {
		return set.ErrorMessage
	}
	return ""
}

func (s *memStore) cardCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cards)
}

type fakeUowFactory struct {
	store *memStore
}

func (f *fakeUowFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeUow struct {
	store *memStore
}

func (u *fakeUow) Begin(_ context.Context) error { return nil }
func (u *fakeUow) Commit() error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.commits++
	return nil
}
func (u *fakeUow) Rollback() error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.rollbacks++
	return nil
}

func (u *fakeUow) ChatSessionRepository() contract.ChatSessionRepository {
	return &fakeSessionRepo{store: u.store}
}
func (u *fakeUow) ChatMessageRepository() contract.ChatMessageRepository {
	return &fakeMessageRepo{store: u.store}
}
func (u *fakeUow) ChatCitationRepository() contract.ChatCitationRepository {
	return &fakeCitationRepo{store: u.store}
}
func (u *fakeUow) DocumentRepository() contract.DocumentRepository {
	return &fakeDocumentRepo{store: u.store}
}
func (u *fakeUow) QuizRepository() contract.QuizRepository {
	return &fakeQuizRepo{store: u.store}
}
func (u *fakeUow) QuizQuestionRepository() contract.QuizQuestionRepository {
	return &fakeQuestionRepo{store: u.store}
}
func (u *fakeUow) FlashcardSetRepository() contract.FlashcardSetRepository {
	return &fakeSetRepo{store: u.store}
}
func (u *fakeUow) FlashcardRepository() contract.FlashcardRepository {
	return &fakeCardRepo{store: u.store}
}

// Spec filters interpret the concrete specification types the services
// actually use. Anything unrecognized is ignored, like OrderBy.

func specID(specs []specification.Specification) (uuid.UUID, bool) {
	for _, sp := range specs {
		if v, ok := sp.(specification.ByID); ok {
			return v.ID, true
		}
	}
	return uuid.Nil, false
}

func specOwner(specs []specification.Specification) (uuid.UUID, bool) {
	for _, sp := range specs {
		if v, ok := sp.(specification.UserOwnedBy); ok {
			return v.UserID, true
		}
	}
	return uuid.Nil, false
}

func specSession(specs []specification.Specification) (uuid.UUID, bool) {
	for _, sp := range specs {
		if v, ok := sp.(specification.ByChatSessionID); ok {
			return v.ChatSessionID, true
		}
	}
	return uuid.Nil, false
}

func specIDs(specs []specification.Specification) ([]uuid.UUID, bool) {
	for _, sp := range specs {
		if v, ok := sp.(specification.ByIDs); ok {
			return v.IDs, true
		}
	}
	return nil, false
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// fakeSessionRepo

type fakeSessionRepo struct{ store *memStore }

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *session
	r.store.sessions[session.Id] = &cp
	return nil
}

func (r *fakeSessionRepo) Update(_ context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *session
	r.store.sessions[session.Id] = &cp
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.sessions, id)
	return nil
}

func (r *fakeSessionRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, session := range r.store.sessions {
		if id, ok := specID(specs); ok && session.Id != id {
			continue
		}
		if owner, ok := specOwner(specs); ok && session.UserId != owner {
			continue
		}
		cp := *session
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.ChatSession
	for _, session := range r.store.sessions {
		if owner, ok := specOwner(specs); ok && session.UserId != owner {
			continue
		}
		cp := *session
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeSessionRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(context.Background(), specs...)
	return int64(len(all)), nil
}

// fakeMessageRepo

type fakeMessageRepo struct{ store *memStore }

func (r *fakeMessageRepo) Create(_ context.Context, message *entity.ChatMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *message
	r.store.messages = append(r.store.messages, &cp)
	return nil
}

func (r *fakeMessageRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, m := range r.store.messages {
		if id, ok := specID(specs); ok && m.Id != id {
			continue
		}
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeMessageRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.ChatMessage
	for _, m := range r.store.messages {
		if sessionId, ok := specSession(specs); ok && m.ChatSessionId != sessionId {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeMessageRepo) DeleteByChatSessionId(_ context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.messages[:0]
	for _, m := range r.store.messages {
		if m.ChatSessionId != sessionId {
			kept = append(kept, m)
		}
	}
	r.store.messages = kept
	return nil
}

// fakeCitationRepo

type fakeCitationRepo struct{ store *memStore }

func (r *fakeCitationRepo) Create(_ context.Context, citation *entity.ChatCitation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *citation
	r.store.citations = append(r.store.citations, &cp)
	return nil
}

func (r *fakeCitationRepo) CreateBulk(_ context.Context, citations []*entity.ChatCitation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range citations {
		cp := *c
		r.store.citations = append(r.store.citations, &cp)
	}
	return nil
}

func (r *fakeCitationRepo) FindAllByMessageIds(_ context.Context, messageIds []uuid.UUID) ([]*entity.ChatCitation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.ChatCitation
	for _, c := range r.store.citations {
		if containsID(messageIds, c.ChatMessageId) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCitationRepo) DeleteByChatSessionId(_ context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	byMessage := map[uuid.UUID]bool{}
	for _, m := range r.store.messages {
		if m.ChatSessionId == sessionId {
			byMessage[m.Id] = true
		}
	}
	kept := r.store.citations[:0]
	for _, c := range r.store.citations {
		if !byMessage[c.ChatMessageId] {
			kept = append(kept, c)
		}
	}
	r.store.citations = kept
	return nil
}

// fakeDocumentRepo

type fakeDocumentRepo struct{ store *memStore }

func (r *fakeDocumentRepo) Create(_ context.Context, document *entity.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *document
	r.store.documents[document.Id] = &cp
	return nil
}

func (r *fakeDocumentRepo) Update(_ context.Context, document *entity.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *document
	r.store.documents[document.Id] = &cp
	return nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.documents, id)
	return nil
}

func (r *fakeDocumentRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Document, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, d := range r.store.documents {
		if id, ok := specID(specs); ok && d.Id != id {
			continue
		}
		if owner, ok := specOwner(specs); ok && d.UserId != owner {
			continue
		}
		if sessionId, ok := specSession(specs); ok && d.ChatSessionId != sessionId {
			continue
		}
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeDocumentRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Document
	for _, d := range r.store.documents {
		if ids, ok := specIDs(specs); ok && !containsID(ids, d.Id) {
			continue
		}
		if owner, ok := specOwner(specs); ok && d.UserId != owner {
			continue
		}
		if sessionId, ok := specSession(specs); ok && d.ChatSessionId != sessionId {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeDocumentRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(context.Background(), specs...)
	return int64(len(all)), nil
}

// fakeQuizRepo

type fakeQuizRepo struct{ store *memStore }

func (r *fakeQuizRepo) Create(_ context.Context, quiz *entity.Quiz) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *quiz
	r.store.quizzes[quiz.Id] = &cp
	return nil
}

func (r *fakeQuizRepo) Update(_ context.Context, quiz *entity.Quiz) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *quiz
	r.store.quizzes[quiz.Id] = &cp
	return nil
}

func (r *fakeQuizRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.quizzes, id)
	return nil
}

func (r *fakeQuizRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Quiz, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, q := range r.store.quizzes {
		if id, ok := specID(specs); ok && q.Id != id {
			continue
		}
		if owner, ok := specOwner(specs); ok && q.UserId != owner {
			continue
		}
		cp := *q
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeQuizRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Quiz, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Quiz
	for _, q := range r.store.quizzes {
		if sessionId, ok := specSession(specs); ok && q.ChatSessionId != sessionId {
			continue
		}
		if owner, ok := specOwner(specs); ok && q.UserId != owner {
			continue
		}
		cp := *q
		out = append(out, &cp)
	}
	return out, nil
}

// fakeQuestionRepo

type fakeQuestionRepo struct{ store *memStore }

func (r *fakeQuestionRepo) CreateBulk(_ context.Context, questions []*entity.QuizQuestion) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failQuestionBulk {
		return fmt.Errorf("question insert refused")
	}
	for _, q := range questions {
		cp := *q
		r.store.questions = append(r.store.questions, &cp)
	}
	return nil
}

func (r *fakeQuestionRepo) FindAllByQuizId(_ context.Context, quizId uuid.UUID) ([]*entity.QuizQuestion, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.QuizQuestion
	for _, q := range r.store.questions {
		if q.QuizId == quizId {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) DeleteByQuizId(_ context.Context, quizId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.questions[:0]
	for _, q := range r.store.questions {
		if q.QuizId != quizId {
			kept = append(kept, q)
		}
	}
	r.store.questions = kept
	return nil
}

// fakeSetRepo

type fakeSetRepo struct{ store *memStore }

func (r *fakeSetRepo) Create(_ context.Context, set *entity.FlashcardSet) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *set
	r.store.sets[set.Id] = &cp
	return nil
}

func (r *fakeSetRepo) Update(_ context.Context, set *entity.FlashcardSet) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *set
	r.store.sets[set.Id] = &cp
	return nil
}

func (r *fakeSetRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.sets, id)
	return nil
}

func (r *fakeSetRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.FlashcardSet, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, set := range r.store.sets {
		if id, ok := specID(specs); ok && set.Id != id {
			continue
		}
		if owner, ok := specOwner(specs); ok && set.UserId != owner {
			continue
		}
		cp := *set
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeSetRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.FlashcardSet, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.FlashcardSet
	for _, set := range r.store.sets {
		if sessionId, ok := specSession(specs); ok && set.ChatSessionId != sessionId {
			continue
		}
		if owner, ok := specOwner(specs); ok && set.UserId != owner {
			continue
		}
		cp := *set
		out = append(out, &cp)
	}
	return out, nil
}

// fakeCardRepo

type fakeCardRepo struct{ store *memStore }

func (r *fakeCardRepo) CreateBulk(_ context.Context, cards []*entity.Flashcard) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failCardBulk {
		return fmt.Errorf("card insert refused")
	}
	for _, c := range cards {
		cp := *c
		r.store.cards = append(r.store.cards, &cp)
	}
	return nil
}

func (r *fakeCardRepo) FindAllBySetId(_ context.Context, setId uuid.UUID) ([]*entity.Flashcard, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Flashcard
	for _, c := range r.store.cards {
		if c.FlashcardSetId == setId {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCardRepo) DeleteBySetId(_ context.Context, setId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.cards[:0]
	for _, c := range r.store.cards {
		if c.FlashcardSetId != setId {
			kept = append(kept, c)
		}
	}
	r.store.cards = kept
	return nil
}

// fakeBlobStore serves canned object contents.

type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string]string
	deleted []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string]string{}}
}

func (b *fakeBlobStore) UploadFile(_ context.Context, filePath, objectName, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[objectName] = filePath
	return objectName, nil
}

func (b *fakeBlobStore) Upload(_ context.Context, r io.Reader, objectName string, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[objectName] = string(data)
	return objectName, nil
}

func (b *fakeBlobStore) Download(_ context.Context, objectName string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	content, ok := b.objects[objectName]
	if !ok {
		return nil, fmt.Errorf("object %s not found", objectName)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (b *fakeBlobStore) PresignedURL(_ context.Context, objectName string, _ time.Duration) (string, error) {
	return "https://blob.local/" + objectName, nil
}

func (b *fakeBlobStore) Delete(_ context.Context, objectName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, objectName)
	b.deleted = append(b.deleted, objectName)
	return nil
}

// fakeLLM answers every call with a fixed response or error.

type fakeLLM struct {
	mu         sync.Mutex
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(history) > 0 {
		f.lastPrompt = history[len(history)-1].Content
	}
	return f.response, f.err
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeLLM) prompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPrompt
}
