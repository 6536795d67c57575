package profile

import (
	"net/http"

	"github.com/Abraxas-365/bolsa/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("PROFILE")

// Error codes
var (
	CodeWorkerNotFound  = ErrRegistry.Register("WORKER_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Worker not found")
	CodeVacancyNotFound = ErrRegistry.Register("VACANCY_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Vacancy not found")
)

func ErrWorkerNotFound() *errx.Error {
	return ErrRegistry.New(CodeWorkerNotFound)
}

func ErrVacancyNotFound() *errx.Error {
	return ErrRegistry.New(CodeVacancyNotFound)
}
