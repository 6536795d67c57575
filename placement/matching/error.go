package matching

import (
	"net/http"

	"github.com/Abraxas-365/bolsa/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("MATCHING")

// Error codes
var (
	CodeMatchNotFound           = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Match not found")
	CodeMatchAlreadyExists      = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "A match already exists for this worker and vacancy")
	CodeMatchIDTaken            = ErrRegistry.Register("ID_TAKEN", errx.TypeConflict, http.StatusConflict, "A match with this id already exists")
	CodeMatchNotDeletable       = ErrRegistry.Register("NOT_DELETABLE", errx.TypeConflict, http.StatusConflict, "Only pending matches can be deleted")
	CodeInvalidStatus           = ErrRegistry.Register("INVALID_STATUS", errx.TypeValidation, http.StatusBadRequest, "Invalid match status")
	CodeInvalidStatusTransition = ErrRegistry.Register("INVALID_STATUS_TRANSITION", errx.TypeConflict, http.StatusConflict, "Invalid status transition")
	CodeProposalRequired        = ErrRegistry.Register("PROPOSAL_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "proposalId is required")
	CodeWorkerRequired          = ErrRegistry.Register("WORKER_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "workerId is required")
	CodeVacancyRequired         = ErrRegistry.Register("VACANCY_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "vacancyId is required")
	CodeCompanyRequired         = ErrRegistry.Register("COMPANY_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "companyId is required")
	CodeInvalidMinScore         = ErrRegistry.Register("INVALID_MIN_SCORE", errx.TypeValidation, http.StatusBadRequest, "minScore must be between 0 and 100")
	CodeInvalidLimit            = ErrRegistry.Register("INVALID_LIMIT", errx.TypeValidation, http.StatusBadRequest, "limit is out of range")
	CodeInvalidRequest          = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid request data")
	CodeGenerationInProgress    = ErrRegistry.Register("GENERATION_IN_PROGRESS", errx.TypeConflict, http.StatusConflict, "A generation for this anchor is already running")
	CodeQueueEnqueueFailed      = ErrRegistry.Register("QUEUE_ENQUEUE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to queue generation task")
	CodeAsyncUnavailable        = ErrRegistry.Register("ASYNC_UNAVAILABLE", errx.TypeBusiness, http.StatusBadRequest, "Async generation is not configured")
	CodeTaskNotFound            = ErrRegistry.Register("TASK_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Generation task not found")
)

func ErrMatchNotFound() *errx.Error {
	return ErrRegistry.New(CodeMatchNotFound)
}

func ErrMatchAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeMatchAlreadyExists)
}

func ErrMatchIDTaken() *errx.Error {
	return ErrRegistry.New(CodeMatchIDTaken)
}

func ErrMatchNotDeletable() *errx.Error {
	return ErrRegistry.New(CodeMatchNotDeletable)
}

func ErrInvalidStatus() *errx.Error {
	return ErrRegistry.New(CodeInvalidStatus)
}

func ErrInvalidStatusTransition() *errx.Error {
	return ErrRegistry.New(CodeInvalidStatusTransition)
}

func ErrProposalRequired() *errx.Error {
	return ErrRegistry.New(CodeProposalRequired)
}

func ErrWorkerRequired() *errx.Error {
	return ErrRegistry.New(CodeWorkerRequired)
}

func ErrVacancyRequired() *errx.Error {
	return ErrRegistry.New(CodeVacancyRequired)
}

func ErrCompanyRequired() *errx.Error {
	return ErrRegistry.New(CodeCompanyRequired)
}

func ErrInvalidMinScore() *errx.Error {
	return ErrRegistry.New(CodeInvalidMinScore)
}

func ErrInvalidLimit() *errx.Error {
	return ErrRegistry.New(CodeInvalidLimit)
}

func ErrInvalidRequest() *errx.Error {
	return ErrRegistry.New(CodeInvalidRequest)
}

func ErrGenerationInProgress() *errx.Error {
	return ErrRegistry.New(CodeGenerationInProgress)
}

func ErrQueueEnqueueFailed() *errx.Error {
	return ErrRegistry.New(CodeQueueEnqueueFailed)
}

func ErrAsyncUnavailable() *errx.Error {
	return ErrRegistry.New(CodeAsyncUnavailable)
}

func ErrTaskNotFound() *errx.Error {
	return ErrRegistry.New(CodeTaskNotFound)
}
