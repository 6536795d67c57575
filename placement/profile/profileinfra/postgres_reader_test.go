package profileinfra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/errx"
	"github.com/Abraxas-365/bolsa/pkg/kernel"
	"github.com/Abraxas-365/bolsa/placement/profile"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	workerCols = []string{
		"id", "first_name", "last_name", "skills", "competencies", "seniority",
		"years_of_experience", "address", "publication_status", "created_at", "updated_at",
	}
	vacancyCols = []string{
		"id", "title", "required_competencies", "required_seniority", "required_experience",
		"location", "company_id", "company_name", "status", "applicant_count", "created_at", "updated_at",
	}
	historyCols = []string{"worker_id", "company", "position", "start_date", "end_date"}
)

func newMockReader(t *testing.T) (*PostgresReader, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresReader(sqlx.NewDb(db, "sqlmock")), mock
}

func TestPostgresReader_GetWorker(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("found with history", func(t *testing.T) {
		reader, mock := newMockReader(t)

		mock.ExpectQuery(`SELECT (.+) FROM workers WHERE id = \$1`).
			WithArgs("1712345678").
			WillReturnRows(sqlmock.NewRows(workerCols).AddRow(
				"1712345678", "Ana", "Pérez", "{javascript,node}", "{liderazgo}", "senior",
				6.0, "Quito, Ecuador", "published", now, now,
			))
		mock.ExpectQuery(`FROM worker_work_history`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(historyCols).
				AddRow("1712345678", "Acme", "Dev", now.AddDate(-3, 0, 0), nil))

		w, err := reader.GetWorker(context.Background(), kernel.WorkerID("1712345678"))

		require.NoError(t, err)
		assert.Equal(t, kernel.WorkerID("1712345678"), w.ID)
		assert.Equal(t, []string{"javascript", "node"}, w.Skills)
		assert.Equal(t, []string{"liderazgo"}, w.Competencies)
		assert.Equal(t, 6.0, w.YearsOfExperience)
		assert.Equal(t, kernel.Address("Quito, Ecuador"), w.Address)
		require.Len(t, w.WorkHistory, 1)
		assert.Equal(t, "Acme", w.WorkHistory[0].Company)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		reader, mock := newMockReader(t)

		mock.ExpectQuery(`SELECT (.+) FROM workers WHERE id = \$1`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(workerCols))

		_, err := reader.GetWorker(context.Background(), kernel.WorkerID("missing"))

		assert.True(t, errx.IsCode(err, profile.CodeWorkerNotFound))
	})

	t.Run("null arrays become empty", func(t *testing.T) {
		reader, mock := newMockReader(t)

		mock.ExpectQuery(`SELECT (.+) FROM workers WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(workerCols).AddRow(
				"1", "A", "B", nil, nil, nil, nil, nil, "published", now, now,
			))
		mock.ExpectQuery(`FROM worker_work_history`).
			WillReturnRows(sqlmock.NewRows(historyCols))

		w, err := reader.GetWorker(context.Background(), kernel.WorkerID("1"))

		require.NoError(t, err)
		assert.NotNil(t, w.Skills)
		assert.Empty(t, w.Skills)
		assert.Empty(t, w.Seniority)
	})
}

func TestPostgresReader_GetVacancy(t *testing.T) {
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		reader, mock := newMockReader(t)

		mock.ExpectQuery(`SELECT (.+) FROM vacancies WHERE id = \$1`).
			WithArgs("VAC-1").
			WillReturnRows(sqlmock.NewRows(vacancyCols).AddRow(
				"VAC-1", "Backend Dev", "{javascript}", "mid-level", 3.0,
				"Quito, EC", "1790012345001", "Acme", "active", 4, now, now,
			))

		v, err := reader.GetVacancy(context.Background(), kernel.VacancyID("VAC-1"))

		require.NoError(t, err)
		assert.Equal(t, kernel.VacancyTitle("Backend Dev"), v.Title)
		assert.Equal(t, []string{"javascript"}, v.RequiredCompetencies)
		assert.Equal(t, kernel.CompanyID("1790012345001"), v.CompanyID)
		assert.True(t, v.IsActive())
	})

	t.Run("not found", func(t *testing.T) {
		reader, mock := newMockReader(t)

		mock.ExpectQuery(`SELECT (.+) FROM vacancies WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(vacancyCols))

		_, err := reader.GetVacancy(context.Background(), kernel.VacancyID("VAC-X"))

		assert.True(t, errx.IsCode(err, profile.CodeVacancyNotFound))
	})

	t.Run("driver error is wrapped", func(t *testing.T) {
		reader, mock := newMockReader(t)
		boom := errors.New("connection reset")

		mock.ExpectQuery(`SELECT (.+) FROM vacancies`).WillReturnError(boom)

		_, err := reader.GetVacancy(context.Background(), kernel.VacancyID("VAC-1"))

		assert.ErrorIs(t, err, boom)
	})
}

func TestPostgresReader_ListPublishedWorkers(t *testing.T) {
	now := time.Now()
	reader, mock := newMockReader(t)

	mock.ExpectQuery(`FROM workers WHERE publication_status = \$1`).
		WithArgs("published").
		WillReturnRows(sqlmock.NewRows(workerCols).
			AddRow("1", "A", "A", "{go}", "{}", "junior", 1.0, "Quito", "published", now, now).
			AddRow("2", "B", "B", "{sql}", "{}", "senior", 0.0, "Cuenca", "published", now, now))
	mock.ExpectQuery(`FROM worker_work_history`).
		WillReturnRows(sqlmock.NewRows(historyCols).
			AddRow("2", "Acme", "DBA", now.AddDate(-2, 0, 0), nil))

	workers, err := reader.ListPublishedWorkers(context.Background())

	require.NoError(t, err)
	require.Len(t, workers, 2)
	assert.Empty(t, workers[0].WorkHistory)
	assert.Len(t, workers[1].WorkHistory, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReader_ListPublishedWorkers_Empty(t *testing.T) {
	reader, mock := newMockReader(t)

	mock.ExpectQuery(`FROM workers WHERE publication_status = \$1`).
		WillReturnRows(sqlmock.NewRows(workerCols))

	workers, err := reader.ListPublishedWorkers(context.Background())

	require.NoError(t, err)
	assert.Empty(t, workers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReader_ListActiveVacancies(t *testing.T) {
	now := time.Now()
	reader, mock := newMockReader(t)

	mock.ExpectQuery(`FROM vacancies WHERE status = \$1`).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows(vacancyCols).
			AddRow("VAC-1", "Dev", "{go}", "senior", 5.0, "Quito", "C1", "Acme", "active", 0, now, now))

	vacancies, err := reader.ListActiveVacancies(context.Background())

	require.NoError(t, err)
	require.Len(t, vacancies, 1)
	assert.Equal(t, kernel.VacancyID("VAC-1"), vacancies[0].ID)
}
