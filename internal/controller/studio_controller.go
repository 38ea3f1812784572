package controller

import (
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/pkg/serverutils"
	"ai-docchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IStudioController interface {
	RegisterRoutes(r fiber.Router)
	CreateQuiz(ctx *fiber.Ctx) error
	GetQuizzes(ctx *fiber.Ctx) error
	GetQuiz(ctx *fiber.Ctx) error
	DeleteQuiz(ctx *fiber.Ctx) error
	CreateFlashcardSet(ctx *fiber.Ctx) error
	GetFlashcardSets(ctx *fiber.Ctx) error
	GetFlashcardSet(ctx *fiber.Ctx) error
	DeleteFlashcardSet(ctx *fiber.Ctx) error
}

type studioController struct {
	studioService service.IStudioService
}

func NewStudioController(studioService service.IStudioService) IStudioController {
	return &studioController{
		studioService: studioService,
	}
}

func (c *studioController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/studio/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("quizzes", c.CreateQuiz)
	h.Get("quizzes", c.GetQuizzes)
	h.Get("quizzes/:id", c.GetQuiz)
	h.Delete("quizzes/:id", c.DeleteQuiz)
	h.Post("flashcards", c.CreateFlashcardSet)
	h.Get("flashcards", c.GetFlashcardSets)
	h.Get("flashcards/:id", c.GetFlashcardSet)
	h.Delete("flashcards/:id", c.DeleteFlashcardSet)
}

func (c *studioController) CreateQuiz(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.CreateQuizRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.studioService.CreateQuiz(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Quiz generation started", res))
}

func (c *studioController) GetQuizzes(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	sessionId, err := uuid.Parse(ctx.Query("chat_session_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid chat_session_id")
	}

	res, err := c.studioService.GetQuizzes(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list quizzes", res))
}

func (c *studioController) GetQuiz(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid quiz id")
	}

	res, err := c.studioService.GetQuiz(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show quiz", res))
}

func (c *studioController) DeleteQuiz(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid quiz id")
	}

	if err := c.studioService.DeleteQuiz(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete quiz", nil))
}

func (c *studioController) CreateFlashcardSet(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.CreateFlashcardSetRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.studioService.CreateFlashcardSet(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Flashcard generation started", res))
}

func (c *studioController) GetFlashcardSets(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	sessionId, err := uuid.Parse(ctx.Query("chat_session_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid chat_session_id")
	}

	res, err := c.studioService.GetFlashcardSets(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list flashcard sets", res))
}

func (c *studioController) GetFlashcardSet(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid flashcard set id")
	}

	res, err := c.studioService.GetFlashcardSet(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show flashcard set", res))
}

func (c *studioController) DeleteFlashcardSet(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid flashcard set id")
	}

	if err := c.studioService.DeleteFlashcardSet(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete flashcard set", nil))
}
