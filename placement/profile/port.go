package profile

import (
	"context"

	"github.com/Abraxas-365/bolsa/pkg/kernel"
)

// Reader gives read-only access to worker and vacancy profiles
type Reader interface {
	// GetWorker retrieves a worker by national ID
	GetWorker(ctx context.Context, id kernel.WorkerID) (*Worker, error)

	// GetVacancy retrieves a vacancy by ID
	GetVacancy(ctx context.Context, id kernel.VacancyID) (*Vacancy, error)

	// ListPublishedWorkers retrieves every worker eligible for matching
	ListPublishedWorkers(ctx context.Context) ([]Worker, error)

	// ListActiveVacancies retrieves every vacancy eligible for matching
	ListActiveVacancies(ctx context.Context) ([]Vacancy, error)
}
