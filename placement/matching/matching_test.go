package matching

import (
	"testing"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/errx"
	"github.com/Abraxas-365/bolsa/pkg/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchStatus_IsValid(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, MatchStatus("archived").IsValid())
	assert.False(t, MatchStatus("").IsValid())
	assert.False(t, MatchStatus("PENDING").IsValid())
}

func TestMatch_UpdateStatus(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	notes := "called the candidate"

	tests := []struct {
		name          string
		from          MatchStatus
		to            MatchStatus
		expectedError errx.Code
	}{
		{"pending to approved", MatchStatusPending, MatchStatusApproved, ""},
		{"pending to rejected", MatchStatusPending, MatchStatusRejected, ""},
		{"approved to hired", MatchStatusApproved, MatchStatusHired, ""},
		{"preloaded to pending", MatchStatusPreloaded, MatchStatusPending, ""},
		{"preloaded to approved", MatchStatusPreloaded, MatchStatusApproved, ""},
		{"same status", MatchStatusApproved, MatchStatusApproved, ""},
		{"unknown status", MatchStatusPending, "archived", CodeInvalidStatus},
		{"rejected is terminal", MatchStatusRejected, MatchStatusApproved, CodeInvalidStatusTransition},
		{"hired is terminal", MatchStatusHired, MatchStatusPending, CodeInvalidStatusTransition},
		{"approved cannot go back", MatchStatusApproved, MatchStatusPending, CodeInvalidStatusTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Match{ID: "MATCH-1", Status: tt.from}
			before := *m

			err := m.UpdateStatus(tt.to, &notes, now)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.True(t, errx.IsCode(err, tt.expectedError))
				assert.Equal(t, before, *m)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, m.Status)
			assert.Equal(t, notes, m.Observations)
			assert.Equal(t, now, m.UpdatedAt)
		})
	}
}

func TestMatch_UpdateStatusTimestamps(t *testing.T) {
	approvedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hiredAt := approvedAt.Add(48 * time.Hour)
	m := &Match{Status: MatchStatusPending}

	require.NoError(t, m.UpdateStatus(MatchStatusApproved, nil, approvedAt))
	require.NotNil(t, m.ApprovedAt)
	assert.Equal(t, approvedAt, *m.ApprovedAt)
	assert.Nil(t, m.HiredAt)

	require.NoError(t, m.UpdateStatus(MatchStatusHired, nil, hiredAt))
	require.NotNil(t, m.HiredAt)
	assert.Equal(t, hiredAt, *m.HiredAt)
	assert.Equal(t, approvedAt, *m.ApprovedAt)

	// repeating the current status keeps the first stamp
	require.NoError(t, m.UpdateStatus(MatchStatusHired, nil, hiredAt.Add(time.Hour)))
	assert.Equal(t, hiredAt, *m.HiredAt)
}

func TestMatch_CanBeDeleted(t *testing.T) {
	for _, s := range AllStatuses {
		m := &Match{Status: s}
		assert.Equal(t, s == MatchStatusPending, m.CanBeDeleted(), s)
	}
}

func TestMatch_LinkProposal(t *testing.T) {
	now := time.Now()

	t.Run("requires proposal id", func(t *testing.T) {
		m := &Match{Status: MatchStatusPending}

		err := m.LinkProposal("", now)

		assert.True(t, errx.IsCode(err, CodeProposalRequired))
		assert.Nil(t, m.LinkedProposalID)
		assert.Equal(t, MatchStatusPending, m.Status)
	})

	t.Run("forces approved", func(t *testing.T) {
		m := &Match{Status: MatchStatusRejected}

		require.NoError(t, m.LinkProposal("PROP-1", now))

		assert.Equal(t, MatchStatusApproved, m.Status)
		assert.Equal(t, kernel.ProposalID("PROP-1"), *m.LinkedProposalID)
		assert.NotNil(t, m.ApprovedAt)
		assert.True(t, m.HasProposal())
	})

	t.Run("hired keeps status", func(t *testing.T) {
		m := &Match{Status: MatchStatusHired}

		require.NoError(t, m.LinkProposal("PROP-2", now))

		assert.Equal(t, MatchStatusHired, m.Status)
		assert.True(t, m.HasProposal())
	})
}

func TestSortByScore(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	matches := []Match{
		{ID: "c", Score: 50, CreatedAt: t0},
		{ID: "b", Score: 90, CreatedAt: t0.Add(time.Hour)},
		{ID: "a", Score: 90, CreatedAt: t0},
		{ID: "e", Score: 70, CreatedAt: t0},
		{ID: "d", Score: 70, CreatedAt: t0},
	}

	SortByScore(matches)

	ids := make([]kernel.MatchID, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []kernel.MatchID{"a", "b", "d", "e", "c"}, ids)
}

func TestBreakdown_Normalize(t *testing.T) {
	assert.NotNil(t, Breakdown{}.Normalize().MatchedCompetencies)
	assert.Equal(t, []string{"go"}, Breakdown{MatchedCompetencies: []string{"go"}}.Normalize().MatchedCompetencies)
}
