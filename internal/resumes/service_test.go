package resumes_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/resumes"
	"resume-builder/internal/users"
)

type fixture struct {
	svc     *resumes.Service
	repo    *resumes.MemoryRepo
	userRep *users.MemoryRepo
}

func newFixture() fixture {
	userRepo := users.NewMemoryRepo()
	repo := resumes.NewMemoryRepo()
	return fixture{
		svc:     resumes.NewService(repo, users.NewService(userRepo)),
		repo:    repo,
		userRep: userRepo,
	}
}

func data(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestUpsertCreateThenUpdateKeepsOneRecord(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, isNew, err := f.svc.Upsert(ctx, resumes.UpsertInput{
		UserID: "user-1",
		Data:   data(t, map[string]any{"summary": "first"}),
	})
	require.NoError(t, err)
	assert.True(t, isNew)
	require.NotEmpty(t, created.ID)

	updated, isNew, err := f.svc.Upsert(ctx, resumes.UpsertInput{
		UserID:   "user-1",
		ResumeID: created.ID,
		Title:    "Backend CV",
		Data:     data(t, map[string]any{"summary": "second"}),
	})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID, updated.ID)

	assert.Equal(t, 1, f.repo.Count())
	stored, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"second"}`, string(stored.StructureData))
	assert.Equal(t, "Backend CV", stored.Title)
	assert.False(t, stored.UpdatedAt.Before(created.UpdatedAt))
}

func TestUpsertUnknownIDIsNotFoundAndCreatesNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		_, _, err := f.svc.Upsert(ctx, resumes.UpsertInput{
			UserID:   "user-1",
			ResumeID: id,
			Data:     data(t, map[string]any{"summary": "x"}),
		})
		assert.ErrorIs(t, err, resumes.ErrNotFound, id)
	}
	assert.Equal(t, 0, f.repo.Count())
}

func TestUpsertDeletedResumeIsNotRecreated(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, _, err := f.svc.Upsert(ctx, resumes.UpsertInput{UserID: "user-1", Data: data(t, map[string]any{})})
	require.NoError(t, err)
	_, err = f.svc.Delete(ctx, created.ID)
	require.NoError(t, err)

	_, _, err = f.svc.Upsert(ctx, resumes.UpsertInput{UserID: "user-1", ResumeID: created.ID, Data: data(t, map[string]any{})})
	assert.ErrorIs(t, err, resumes.ErrNotFound)
	assert.Equal(t, 0, f.repo.Count())
}

func TestUpsertProvisionsMissingOwnerOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _, err := f.svc.Upsert(ctx, resumes.UpsertInput{UserID: "fresh-user", Data: data(t, map[string]any{"n": i})})
		require.NoError(t, err)
	}

	n, err := f.userRep.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	owner, err := f.userRep.GetByID(ctx, "fresh-user")
	require.NoError(t, err)
	assert.Equal(t, "fresh-user@placeholder.local", owner.Email)
	assert.Equal(t, "Temporary User", owner.Name)
}

func TestUpsertConcurrentProvisioningConverges(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.svc.Upsert(ctx, resumes.UpsertInput{UserID: "racy-user", Data: json.RawMessage(`{}`)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := f.userRep.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 8, f.repo.Count())
}

func TestUpsertValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := []struct {
		name  string
		in    resumes.UpsertInput
		field string
	}{
		{"missing user", resumes.UpsertInput{Data: json.RawMessage(`{}`)}, "userId"},
		{"missing data", resumes.UpsertInput{UserID: "u"}, "data"},
		{"null data", resumes.UpsertInput{UserID: "u", Data: json.RawMessage(`null`)}, "data"},
		{"broken data", resumes.UpsertInput{UserID: "u", Data: json.RawMessage(`{"a":`)}, "data"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.svc.Upsert(ctx, tc.in)
			require.ErrorIs(t, err, resumes.ErrInvalidInput)
			var fe *resumes.FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tc.field, fe.Field)
		})
	}
	assert.Equal(t, 0, f.repo.Count())
}

func TestUpsertRejectsOversizedData(t *testing.T) {
	f := newFixture()
	f.svc.MaxDataBytes = 8

	_, _, err := f.svc.Upsert(context.Background(), resumes.UpsertInput{UserID: "u", Data: json.RawMessage(`{"summary":"long"}`)})
	assert.ErrorIs(t, err, resumes.ErrInvalidInput)
}

func TestUpsertDefaultsTitleAndTemplate(t *testing.T) {
	f := newFixture()

	created, _, err := f.svc.Upsert(context.Background(), resumes.UpsertInput{UserID: "u", Data: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.Equal(t, "My Resume", created.Title)
	assert.Equal(t, resumes.DefaultTemplateID, created.TemplateID)
	assert.Equal(t, "u", created.UserID)
}

func TestUpsertUpdateByOtherOwnerIsNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, _, err := f.svc.Upsert(ctx, resumes.UpsertInput{UserID: "alice", Data: json.RawMessage(`{"v":1}`)})
	require.NoError(t, err)

	_, _, err = f.svc.Upsert(ctx, resumes.UpsertInput{UserID: "mallory", ResumeID: created.ID, Data: json.RawMessage(`{"v":2}`)})
	assert.ErrorIs(t, err, resumes.ErrNotFound)

	stored, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(stored.StructureData))
}

func TestDeleteTwiceSucceeds(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, _, err := f.svc.Upsert(ctx, resumes.UpsertInput{UserID: "u", Data: json.RawMessage(`{}`)})
	require.NoError(t, err)

	deleted, err := f.svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = f.svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = f.svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, resumes.ErrNotFound)
}

func TestDuplicateIsIndependentCopy(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	source, _, err := f.svc.Upsert(ctx, resumes.UpsertInput{UserID: "u", Title: "Data Engineer", Data: json.RawMessage(`{"skills":["go"]}`)})
	require.NoError(t, err)

	copied, err := f.svc.Duplicate(ctx, source.ID)
	require.NoError(t, err)
	assert.NotEqual(t, source.ID, copied.ID)
	assert.Equal(t, "Data Engineer (Copy)", copied.Title)
	assert.Equal(t, source.UserID, copied.UserID)
	assert.Equal(t, source.TemplateID, copied.TemplateID)
	assert.JSONEq(t, string(source.StructureData), string(copied.StructureData))

	_, _, err = f.svc.Upsert(ctx, resumes.UpsertInput{UserID: "u", ResumeID: copied.ID, Title: "Changed", Data: json.RawMessage(`{"skills":["rust"]}`)})
	require.NoError(t, err)

	stored, err := f.svc.Get(ctx, source.ID)
	require.NoError(t, err)
	assert.Equal(t, "Data Engineer", stored.Title)
	assert.JSONEq(t, `{"skills":["go"]}`, string(stored.StructureData))
}

func TestDuplicateMissingSource(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Duplicate(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, resumes.ErrNotFound)
	assert.Equal(t, 0, f.repo.Count())
}
