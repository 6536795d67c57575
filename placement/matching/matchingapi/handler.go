package matchingapi

import (
	"context"
	"strconv"
	"strings"

	"github.com/Abraxas-365/bolsa/pkg/iam/auth"
	"github.com/Abraxas-365/bolsa/pkg/kernel"
	"github.com/Abraxas-365/bolsa/placement/matching"
	"github.com/gofiber/fiber/v2"
)

// MatchService is the lifecycle surface used by the handlers
type MatchService interface {
	Create(ctx context.Context, req matching.CreateMatchRequest) (*matching.MatchResponse, error)
	Get(ctx context.Context, id kernel.MatchID) (*matching.MatchResponse, error)
	List(ctx context.Context, filter matching.ListFilter) ([]matching.Match, error)
	ListByWorker(ctx context.Context, workerID kernel.WorkerID) ([]matching.Match, error)
	ListByVacancy(ctx context.Context, vacancyID kernel.VacancyID) ([]matching.Match, error)
	ListByCompany(ctx context.Context, companyID kernel.CompanyID) ([]matching.Match, error)
	ListPending(ctx context.Context, companyID kernel.CompanyID, limit int) ([]matching.Match, error)
	Update(ctx context.Context, id kernel.MatchID, req matching.UpdateMatchRequest) (*matching.MatchResponse, error)
	UpdateStatus(ctx context.Context, id kernel.MatchID, req matching.UpdateStatusRequest) (*matching.MatchResponse, error)
	Delete(ctx context.Context, id kernel.MatchID) error
	LinkProposal(ctx context.Context, id kernel.MatchID, proposalID kernel.ProposalID) (*matching.MatchResponse, error)
	Calculate(ctx context.Context, req matching.CalculateRequest) (*matching.CalculateResponse, error)
	Top(ctx context.Context, limit int, minScore *float64) ([]matching.Match, error)
	Statistics(ctx context.Context, companyID kernel.CompanyID) (*matching.Statistics, error)
	CompanySummary(ctx context.Context, companyID kernel.CompanyID) (*matching.CompanySummary, error)
}

// Generator runs synchronous bulk generation
type Generator interface {
	Generate(ctx context.Context, kind matching.AnchorKind, anchorID string, opts matching.GenerateOptions) (*matching.GenerateResult, error)
}

// TaskQueue accepts queued generations
type TaskQueue interface {
	Enqueue(ctx context.Context, kind matching.AnchorKind, anchorID string, opts matching.GenerateOptions) (*matching.GenerationTask, error)
	GetTask(ctx context.Context, id kernel.TaskID) (*matching.GenerationTask, error)
}

// Handlers provides HTTP handlers for match operations
type Handlers struct {
	service   MatchService
	generator Generator
	tasks     TaskQueue
	defaults  matching.GenerateOptions
}

// NewHandlers creates the match handlers. tasks may be nil, which disables
// async generation.
func NewHandlers(service MatchService, generator Generator, tasks TaskQueue, defaults matching.GenerateOptions) *Handlers {
	return &Handlers{
		service:   service,
		generator: generator,
		tasks:     tasks,
		defaults:  defaults,
	}
}

// CreateMatch creates a match for a worker and vacancy
// POST /api/matchings
func (h *Handlers) CreateMatch(c *fiber.Ctx) error {
	var req matching.CreateMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return matching.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	resp, err := h.service.Create(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetMatch retrieves a match with recommendations
// GET /api/matchings/:id
func (h *Handlers) GetMatch(c *fiber.Ctx) error {
	resp, err := h.service.Get(c.Context(), kernel.MatchID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListMatches lists matches with optional filters
// GET /api/matchings?status=&companyId=&workerId=&vacancyId=&minScore=
func (h *Handlers) ListMatches(c *fiber.Ctx) error {
	filter := matching.ListFilter{
		CompanyID: kernel.CompanyID(c.Query("companyId")),
		WorkerID:  kernel.WorkerID(c.Query("workerId")),
		VacancyID: kernel.VacancyID(c.Query("vacancyId")),
	}

	// status=pending,preloaded selects several statuses
	if raw := c.Query("status"); raw != "" {
		parts := strings.Split(raw, ",")
		if len(parts) == 1 {
			filter.Status = matching.MatchStatus(strings.TrimSpace(raw))
		} else {
			for _, p := range parts {
				filter.Statuses = append(filter.Statuses, matching.MatchStatus(strings.TrimSpace(p)))
			}
		}
	}

	minScore, err := queryFloat(c, "minScore")
	if err != nil {
		return err
	}
	filter.MinScore = minScore

	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}
	filter.Limit = limit

	matches, err := h.service.List(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(matching.NewMatchListResponse(matches))
}

// ListByWorker lists the matches of a worker
// GET /api/matchings/worker/:workerId
func (h *Handlers) ListByWorker(c *fiber.Ctx) error {
	matches, err := h.service.ListByWorker(c.Context(), kernel.WorkerID(c.Params("workerId")))
	if err != nil {
		return err
	}
	return c.JSON(matching.NewMatchListResponse(matches))
}

// ListByVacancy lists the matches of a vacancy
// GET /api/matchings/vacancy/:vacancyId
func (h *Handlers) ListByVacancy(c *fiber.Ctx) error {
	matches, err := h.service.ListByVacancy(c.Context(), kernel.VacancyID(c.Params("vacancyId")))
	if err != nil {
		return err
	}
	return c.JSON(matching.NewMatchListResponse(matches))
}

// ListByCompany lists the matches of a company
// GET /api/matchings/company/:companyId
func (h *Handlers) ListByCompany(c *fiber.Ctx) error {
	matches, err := h.service.ListByCompany(c.Context(), kernel.CompanyID(c.Params("companyId")))
	if err != nil {
		return err
	}
	return c.JSON(matching.NewMatchListResponse(matches))
}

// ListPending lists matches awaiting review
// GET /api/matchings/pending?companyId=&limit=
func (h *Handlers) ListPending(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}

	matches, err := h.service.ListPending(c.Context(), kernel.CompanyID(c.Query("companyId")), limit)
	if err != nil {
		return err
	}
	return c.JSON(matching.NewMatchListResponse(matches))
}

// UpdateMatch applies a partial update
// PATCH /api/matchings/:id
func (h *Handlers) UpdateMatch(c *fiber.Ctx) error {
	var req matching.UpdateMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return matching.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	resp, err := h.service.Update(c.Context(), kernel.MatchID(c.Params("id")), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// UpdateStatus moves a match through its lifecycle
// PATCH /api/matchings/:id/status
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	var req matching.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return matching.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	resp, err := h.service.UpdateStatus(c.Context(), kernel.MatchID(c.Params("id")), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// LinkProposal attaches a proposal and approves the match
// POST /api/matchings/:id/proposal
func (h *Handlers) LinkProposal(c *fiber.Ctx) error {
	var req matching.LinkProposalRequest
	if err := c.BodyParser(&req); err != nil {
		return matching.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	resp, err := h.service.LinkProposal(c.Context(), kernel.MatchID(c.Params("id")), req.ProposalID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// DeleteMatch deletes a pending match
// DELETE /api/matchings/:id
func (h *Handlers) DeleteMatch(c *fiber.Ctx) error {
	id := kernel.MatchID(c.Params("id"))
	if err := h.service.Delete(c.Context(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Match deleted successfully",
		"id":      id,
	})
}

// Calculate scores a pair without persisting it
// POST /api/matchings/calculate
func (h *Handlers) Calculate(c *fiber.Ctx) error {
	var req matching.CalculateRequest
	if err := c.BodyParser(&req); err != nil {
		return matching.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	resp, err := h.service.Calculate(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Top lists the globally best matches
// GET /api/matchings/top?limit=&minScore=
func (h *Handlers) Top(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}
	minScore, err := queryFloat(c, "minScore")
	if err != nil {
		return err
	}

	matches, err := h.service.Top(c.Context(), limit, minScore)
	if err != nil {
		return err
	}
	return c.JSON(matching.NewMatchListResponse(matches))
}

// Statistics aggregates matches by status and score bucket
// GET /api/matchings/statistics?companyId=
func (h *Handlers) Statistics(c *fiber.Ctx) error {
	stats, err := h.service.Statistics(c.Context(), kernel.CompanyID(c.Query("companyId")))
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// CompanySummary summarizes a company's matches
// GET /api/matchings/company/:companyId/summary
func (h *Handlers) CompanySummary(c *fiber.Ctx) error {
	summary, err := h.service.CompanySummary(c.Context(), kernel.CompanyID(c.Params("companyId")))
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// GenerateForVacancy ranks workers for a vacancy
// POST /api/matchings/vacancy/:vacancyId/generate[?async=true]
func (h *Handlers) GenerateForVacancy(c *fiber.Ctx) error {
	return h.generate(c, matching.AnchorVacancy, c.Params("vacancyId"))
}

// GenerateForWorker ranks vacancies for a worker
// POST /api/matchings/worker/:workerId/generate[?async=true]
func (h *Handlers) GenerateForWorker(c *fiber.Ctx) error {
	return h.generate(c, matching.AnchorWorker, c.Params("workerId"))
}

func (h *Handlers) generate(c *fiber.Ctx, kind matching.AnchorKind, anchorID string) error {
	var req matching.GenerateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return matching.ErrInvalidRequest().WithDetail("parse_error", err.Error())
		}
	}
	opts := req.Resolve(h.defaults)

	if c.QueryBool("async") {
		if h.tasks == nil {
			return matching.ErrAsyncUnavailable()
		}
		task, err := h.tasks.Enqueue(c.Context(), kind, anchorID, opts)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusAccepted).JSON(task)
	}

	result, err := h.generator.Generate(c.Context(), kind, anchorID, opts)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GetTask reports the state of a queued generation
// GET /api/matchings/tasks/:id
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	if h.tasks == nil {
		return matching.ErrAsyncUnavailable()
	}

	task, err := h.tasks.GetTask(c.Context(), kernel.TaskID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(task)
}

// ============================================================================
// Helpers
// ============================================================================

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, matching.ErrInvalidLimit().WithDetail(key, raw)
	}
	return v, nil
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, matching.ErrInvalidMinScore().WithDetail(key, raw)
	}
	return &v, nil
}

// RegisterRoutes registers all match routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.UnifiedAuthMiddleware) {
	api := app.Group("/api/matchings", authMiddleware.Authenticate())

	read := authMiddleware.RequireScope(auth.ScopeMatchingsRead)
	write := authMiddleware.RequireScope(auth.ScopeMatchingsWrite)
	generate := authMiddleware.RequireScope(auth.ScopeMatchingsGenerate)

	// Static paths before /:id
	api.Get("/", read, handlers.ListMatches)
	api.Get("/top", read, handlers.Top)
	api.Get("/statistics", read, handlers.Statistics)
	api.Get("/pending", read, handlers.ListPending)
	api.Get("/tasks/:id", generate, handlers.GetTask)
	api.Get("/company/:companyId/summary", read, handlers.CompanySummary)
	api.Get("/company/:companyId", read, handlers.ListByCompany)
	api.Get("/worker/:workerId", read, handlers.ListByWorker)
	api.Get("/vacancy/:vacancyId", read, handlers.ListByVacancy)
	api.Get("/:id", read, handlers.GetMatch)

	api.Post("/", write, handlers.CreateMatch)
	api.Post("/calculate", read, handlers.Calculate)
	api.Post("/vacancy/:vacancyId/generate", generate, handlers.GenerateForVacancy)
	api.Post("/worker/:workerId/generate", generate, handlers.GenerateForWorker)
	api.Post("/:id/proposal", write, handlers.LinkProposal)

	api.Patch("/:id", write, handlers.UpdateMatch)
	api.Patch("/:id/status", write, handlers.UpdateStatus)

	api.Delete("/:id", authMiddleware.RequireScope(auth.ScopeMatchingsDelete), handlers.DeleteMatch)
}
