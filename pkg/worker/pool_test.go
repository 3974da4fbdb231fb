package worker

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gofhir/datamodel/pkg/issue"
	"github.com/gofhir/datamodel/pkg/path"
	"github.com/gofhir/datamodel/pkg/r5"
	"github.com/gofhir/datamodel/pkg/validator"
	"github.com/gofhir/datamodel/pkg/value"
)

// mockValidator counts calls and fails records of type "Broken".
type mockValidator struct {
	callCount atomic.Int32
	delay     time.Duration
}

func (m *mockValidator) ValidateRecord(rec *value.Record) (*issue.Result, error) {
	m.callCount.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if rec.TypeName() == "Broken" {
		return nil, errors.New("unknown type Broken")
	}
	result := issue.NewResult()
	if rec.TypeName() == "Invalid" {
		result.AddIssue(issue.MissingRequiredField(path.Root.Child("status")))
	}
	return result, nil
}

func records(types ...string) []*value.Record {
	out := make([]*value.Record, len(types))
	for i, t := range types {
		out[i] = value.Assemble(t)
	}
	return out
}

func TestPoolNewPool(t *testing.T) {
	pool := NewPool(&mockValidator{}, 2)
	defer pool.Close()

	require.NotNil(t, pool)
	assert.Equal(t, 2, pool.workers)
	assert.Equal(t, 2, pool.Stats().Workers)
}

func TestPoolDefaultWorkers(t *testing.T) {
	pool := NewPool(&mockValidator{}, 0)
	defer pool.Close()

	assert.Positive(t, pool.workers)
}

func TestPoolSubmitAndCollect(t *testing.T) {
	mock := &mockValidator{}
	pool := NewPool(mock, 3)

	go func() {
		for _, rec := range records("Ok", "Invalid", "Broken", "Ok", "Ok") {
			pool.Submit(Job{Record: rec})
		}
		pool.Submit(Job{ID: "named", Record: value.Assemble("Ok")})
	}()

	var got []*JobResult
	for r := range pool.Results() {
		got = append(got, r)
		if len(got) == 6 {
			break
		}
	}
	batch := pool.CloseAndWait()
	assert.Empty(t, batch.Results)

	require.Len(t, got, 6)
	assert.Equal(t, int32(6), mock.callCount.Load())

	sort.Slice(got, func(i, j int) bool { return got[i].Index < got[j].Index })
	for i, r := range got[:5] {
		assert.Equal(t, i, r.Index)
		_, err := uuid.Parse(r.ID)
		assert.NoError(t, err, "generated id %q", r.ID)
	}
	assert.Equal(t, "named", got[5].ID)
	assert.True(t, got[0].Valid(false))
	assert.False(t, got[1].Valid(false))
	assert.Error(t, got[2].Error)

	stats := pool.Stats()
	assert.Equal(t, uint64(6), stats.JobsSubmitted)
	assert.Equal(t, uint64(6), stats.JobsCompleted)
	assert.Equal(t, uint64(1), stats.JobsFailed)
}

func TestPoolCloseAndWait(t *testing.T) {
	pool := NewPool(&mockValidator{delay: time.Millisecond}, 2)

	submitted := make(chan struct{})
	go func() {
		defer close(submitted)
		for _, rec := range records("Ok", "Ok", "Invalid", "Ok") {
			pool.Submit(Job{Record: rec})
		}
	}()
	<-submitted

	batch := pool.CloseAndWait()
	assert.Equal(t, 4, batch.TotalJobs)
	assert.Equal(t, 4, batch.CompletedJobs)
	assert.Len(t, batch.Results, 4)
	assert.True(t, batch.HasErrors())
	assert.Equal(t, 1, batch.ErrorCount())

	assert.Empty(t, pool.CloseAndWait().Results, "second close is a no-op")
}

func TestPoolClosedRejectsJobs(t *testing.T) {
	pool := NewPool(&mockValidator{}, 1)
	pool.Close()
	pool.Close()

	assert.False(t, pool.Submit(Job{Record: value.Assemble("Ok")}))
	assert.False(t, pool.SubmitAsync(Job{Record: value.Assemble("Ok")}))
	assert.Zero(t, pool.Stats().JobsSubmitted)
}

func TestPoolSubmitAsyncFull(t *testing.T) {
	pool := NewPool(&mockValidator{delay: 50 * time.Millisecond}, 1)
	defer pool.Close()

	accepted := 0
	for i := 0; i < 10; i++ {
		if pool.SubmitAsync(Job{Record: value.Assemble("Ok")}) {
			accepted++
		}
	}
	// one in flight at most plus a queue of two
	assert.Less(t, accepted, 10)
	assert.Equal(t, uint64(accepted), pool.Stats().JobsSubmitted)
}

func TestPoolNoValidator(t *testing.T) {
	pool := NewPool(nil, 1)
	require.True(t, pool.Submit(Job{Record: value.Assemble("Ok")}))
	r := <-pool.Results()
	pool.Close()

	assert.ErrorIs(t, r.Error, ErrNoValidator)
}

func TestValidateAllKeepsOrder(t *testing.T) {
	types := []string{"Ok", "Invalid", "Ok", "Broken", "Ok", "Invalid", "Ok", "Ok"}
	batch := ValidateAll(context.Background(), &mockValidator{}, records(types...), 4)

	require.Len(t, batch.Results, len(types))
	assert.Equal(t, len(types), batch.CompletedJobs)
	assert.Equal(t, 1, batch.FailedJobs)
	assert.Equal(t, 2, batch.ErrorCount())
	for i, r := range batch.Results {
		require.NotNil(t, r)
		assert.Equal(t, i, r.Index)
		switch types[i] {
		case "Ok":
			assert.True(t, r.Valid(false), "record %d", i)
		default:
			assert.False(t, r.Valid(false), "record %d", i)
		}
	}
}

func TestValidateAllSequentialAndEmpty(t *testing.T) {
	batch := ValidateAll(context.Background(), &mockValidator{}, nil, 4)
	assert.Empty(t, batch.Results)

	batch = ValidateAll(context.Background(), &mockValidator{}, records("Ok", "Invalid"), 4)
	require.Len(t, batch.Results, 2)
	assert.Equal(t, "1", batch.Results[1].ID)
	assert.True(t, batch.HasErrors())
}

func TestValidateAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := ValidateAll(ctx, &mockValidator{}, records("Ok", "Ok", "Ok", "Ok"), 2)
	assert.Equal(t, 4, batch.TotalJobs)
	assert.Less(t, batch.CompletedJobs, 4)
}

func TestValidateAllWithRealValidator(t *testing.T) {
	reg, err := r5.NewRegistry()
	require.NoError(t, err)
	v := validator.New(reg)

	good := value.Assemble(r5.AppointmentType,
		value.Scalar("status", value.Code("booked")),
		value.ListOf("participant", value.Nested(value.Assemble(r5.AppointmentParticipantType,
			value.Scalar("status", value.Code("accepted")),
			value.Scalar("actor", value.Ref("Patient", "p1")),
		))),
	)
	bad := value.Assemble(r5.AppointmentType, value.Scalar("status", value.Code("booked")))

	batch := ValidateAll(context.Background(), v, []*value.Record{good, bad, good, bad}, 2)
	require.Len(t, batch.Results, 4)
	assert.True(t, batch.Results[0].Valid(false))
	assert.False(t, batch.Results[1].Valid(false))
	assert.Equal(t, 2, batch.ErrorCount())
}
