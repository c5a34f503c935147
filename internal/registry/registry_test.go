package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testRequest() Request {
	return Request{
		URL:    "https://example.com/playlist",
		IMDBID: "tt1234567",
		Name:   "Show",
		Season: 1,
	}
}

func TestCreateReturnsPendingJob(t *testing.T) {
	reg := New()

	id, err := reg.Create(testRequest())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	job, err := reg.Get(id)
	require.NoError(t, err)
	require.Equal(t, StatusPending, job.Status)
	require.Equal(t, testRequest(), job.Request)
	require.False(t, job.CreatedAt.IsZero())
	require.Nil(t, job.ProgressPercent)
	require.Nil(t, job.StartedAt)
}

func TestCreateConflictsWhileActive(t *testing.T) {
	reg := New()

	id, err := reg.Create(testRequest())
	require.NoError(t, err)

	// pending blocks
	_, err = reg.Create(testRequest())
	require.ErrorIs(t, err, ErrActiveJob)

	// running blocks too
	reg.Update(id, Update{Status: Ptr(StatusRunning)})
	_, err = reg.Create(testRequest())
	require.ErrorIs(t, err, ErrActiveJob)

	// a terminal job releases the guard
	reg.Update(id, Update{Status: Ptr(StatusFailed), Error: Ptr("boom")})
	id2, err := reg.Create(testRequest())
	require.NoError(t, err)
	require.NotEqual(t, id, id2)
}

func TestConcurrentCreateHasSingleWinner(t *testing.T) {
	reg := New()

	const attempts = 50

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Create(testRequest())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for err := range results {
		if err == nil {
			winners++
		} else {
			require.ErrorIs(t, err, ErrActiveJob)
		}
	}
	require.Equal(t, 1, winners)
}

func TestGetUnknownJob(t *testing.T) {
	reg := New()

	_, err := reg.Get("no-such-id")
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestUpdateMergesOnlyGivenFields(t *testing.T) {
	reg := New()
	id, err := reg.Create(testRequest())
	require.NoError(t, err)

	started := time.Now().UTC()
	reg.Update(id, Update{
		Status:          Ptr(StatusRunning),
		StartedAt:       &started,
		ProgressPercent: Ptr(0),
		CurrentTitle:    Ptr(""),
		Speed:           Ptr(""),
	})

	reg.Update(id, Update{
		ProgressPercent: Ptr(42),
		Speed:           Ptr("2.00 MiB/s"),
		CurrentTitle:    Ptr("Episode 3"),
		CurrentEpisode:  Ptr(2),
	})

	job, err := reg.Get(id)
	require.NoError(t, err)
	require.Equal(t, StatusRunning, job.Status) // untouched by second update
	require.Equal(t, 42, *job.ProgressPercent)
	require.Equal(t, "2.00 MiB/s", job.Speed)
	require.Equal(t, "Episode 3", job.CurrentTitle)
	require.Equal(t, 2, *job.CurrentEpisode)
	require.Equal(t, started, *job.StartedAt)
}

func TestUpdateUnknownJobIsNoop(t *testing.T) {
	reg := New()

	require.NotPanics(t, func() {
		reg.Update("no-such-id", Update{Status: Ptr(StatusFailed)})
	})
}

func TestGetReturnsSnapshot(t *testing.T) {
	reg := New()
	id, err := reg.Create(testRequest())
	require.NoError(t, err)

	reg.Update(id, Update{Status: Ptr(StatusRunning), ProgressPercent: Ptr(10)})

	snapshot, err := reg.Get(id)
	require.NoError(t, err)

	reg.Update(id, Update{Status: Ptr(StatusFinished), ProgressPercent: Ptr(100)})

	// the earlier snapshot is unaffected by later updates
	require.Equal(t, StatusRunning, snapshot.Status)
	require.Equal(t, 10, *snapshot.ProgressPercent)
}

func TestTerminalFieldPairing(t *testing.T) {
	reg := New()

	id, err := reg.Create(testRequest())
	require.NoError(t, err)
	reg.Update(id, Update{
		Status:     Ptr(StatusFinished),
		ResultPath: Ptr("/data/library/Show [imdbid-tt1234567]/Season 01"),
	})
	job, err := reg.Get(id)
	require.NoError(t, err)
	require.NotEmpty(t, job.ResultPath)
	require.Empty(t, job.Error)

	id2, err := reg.Create(testRequest())
	require.NoError(t, err)
	reg.Update(id2, Update{
		Status: Ptr(StatusFailed),
		Error:  Ptr("Season folder already exists"),
	})
	job2, err := reg.Get(id2)
	require.NoError(t, err)
	require.NotEmpty(t, job2.Error)
	require.Empty(t, job2.ResultPath)
}

func TestStatusPredicates(t *testing.T) {
	require.True(t, StatusPending.IsActive())
	require.True(t, StatusRunning.IsActive())
	require.False(t, StatusFinished.IsActive())
	require.False(t, StatusFailed.IsActive())

	require.True(t, StatusFinished.IsTerminal())
	require.True(t, StatusFailed.IsTerminal())
	require.False(t, StatusPending.IsTerminal())
	require.False(t, StatusRunning.IsTerminal())
}
