package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sjperalta/registro-api/internal/metrics"
	"github.com/sjperalta/registro-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func newTestInterceptor() *Interceptor {
	return NewInterceptor(WithClock(func() time.Time { return fixedNow }))
}

func TestIdentityFromContext(t *testing.T) {
	assert.Equal(t, SystemIdentity, IdentityFromContext(context.Background()))
	assert.Equal(t, SystemIdentity, IdentityFromContext(WithIdentity(context.Background(), "  ")))
	assert.Equal(t, "mario.rossi", IdentityFromContext(WithIdentity(context.Background(), "mario.rossi")))
}

func TestApply_Added(t *testing.T) {
	id := uuid.MustParse("7d0b4d3e-2f7b-4d8e-8d7c-4a0f5b1f3c11")
	i := NewInterceptor(
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() uuid.UUID { return id }),
	)
	stale := fixedNow.Add(-time.Hour)
	c := &models.Contract{Number: "CTR-1"}
	c.IsDeleted = true
	c.DeletedAt = &stale
	c.ModifiedAt = &stale

	out := i.Apply(WithIdentity(context.Background(), "mario.rossi"), []Change{Create(c)})

	require.Len(t, out, 1)
	assert.Equal(t, Added, out[0].Kind)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, fixedNow, c.CreatedAt)
	assert.Equal(t, "mario.rossi", c.CreatedBy)
	assert.False(t, c.IsDeleted)
	assert.Nil(t, c.DeletedAt)
	assert.Nil(t, c.ModifiedAt)
}

func TestApply_AddedKeepsExistingID(t *testing.T) {
	id := uuid.New()
	c := &models.Contract{Base: models.Base{ID: id}}

	newTestInterceptor().Apply(context.Background(), []Change{Create(c)})

	assert.Equal(t, id, c.ID)
	assert.Equal(t, SystemIdentity, c.CreatedBy)
}

func TestApply_ModifiedProtectsCreationFields(t *testing.T) {
	c := &models.Contract{}
	c.CreatedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	c.CreatedBy = "intruder"

	out := newTestInterceptor().Apply(WithIdentity(context.Background(), "anna.bianchi"), []Change{Update(c)})

	require.Len(t, out, 1)
	ch := out[0]
	assert.Equal(t, Modified, ch.Kind)
	assert.Subset(t, ch.Omit, []string{models.ColumnCreatedAt, models.ColumnCreatedBy})
	assert.Subset(t, ch.Omit, []string{models.ColumnIsDeleted, models.ColumnDeletedAt, models.ColumnDeletedBy})
	assert.Empty(t, ch.Select)
	require.NotNil(t, c.ModifiedAt)
	assert.Equal(t, fixedNow, *c.ModifiedAt)
	assert.Equal(t, "anna.bianchi", *c.ModifiedBy)
}

func TestApply_ModifiedWithSelectAddsStampColumns(t *testing.T) {
	c := &models.Contract{}

	out := newTestInterceptor().Apply(context.Background(), []Change{Update(c, "status")})

	assert.Equal(t, []string{"status", models.ColumnModifiedAt, models.ColumnModifiedBy}, out[0].Select)
	assert.Equal(t, SystemIdentity, *c.ModifiedBy)
}

func TestApply_ModifiedMarkedDeleted(t *testing.T) {
	c := &models.Contract{}
	c.IsDeleted = true

	out := newTestInterceptor().Apply(WithIdentity(context.Background(), "anna.bianchi"), []Change{Update(c, "note")})

	ch := out[0]
	assert.Nil(t, c.ModifiedAt, "a deleting update must not stamp modified")
	require.NotNil(t, c.DeletedAt)
	assert.Equal(t, fixedNow, *c.DeletedAt)
	assert.Equal(t, "anna.bianchi", *c.DeletedBy)
	assert.Contains(t, ch.Select, models.ColumnIsDeleted)
	assert.NotContains(t, ch.Omit, models.ColumnIsDeleted)
}

func TestApply_ModifiedMarkedDeletedKeepsFirstStamp(t *testing.T) {
	first := fixedNow.Add(-24 * time.Hour)
	by := "first.user"
	c := &models.Contract{}
	c.IsDeleted = true
	c.DeletedAt = &first
	c.DeletedBy = &by

	newTestInterceptor().Apply(context.Background(), []Change{Update(c)})

	assert.Equal(t, first, *c.DeletedAt)
	assert.Equal(t, "first.user", *c.DeletedBy)
}

func TestApply_DeletedBecomesTombstoneUpdate(t *testing.T) {
	u := &models.User{ID: uuid.New(), Username: "luca"}

	out := newTestInterceptor().Apply(WithIdentity(context.Background(), "admin"), []Change{Delete(u)})

	require.Len(t, out, 1)
	ch := out[0]
	assert.Equal(t, Modified, ch.Kind)
	assert.ElementsMatch(t, []string{models.ColumnIsDeleted, models.ColumnDeletedAt, models.ColumnDeletedBy}, ch.Select)
	assert.True(t, u.IsDeleted)
	assert.Equal(t, fixedNow, *u.DeletedAt)
	assert.Equal(t, "admin", *u.DeletedBy)
	assert.Nil(t, u.ModifiedAt)
}

func TestApply_SkipsNilEntities(t *testing.T) {
	out := newTestInterceptor().Apply(context.Background(), []Change{{Kind: Added}})
	assert.Empty(t, out)
}

func TestApply_DoesNotShareSliceWithCaller(t *testing.T) {
	cols := make([]string, 1, 4)
	cols[0] = "status"
	c := &models.Contract{}

	out := newTestInterceptor().Apply(context.Background(), []Change{{Kind: Modified, Entity: c, Select: cols}})

	out[0].Select[0] = "changed"
	assert.Equal(t, "status", cols[0])
}

func TestApply_CountsChanges(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	i := NewInterceptor(WithMetrics(m))

	i.Apply(context.Background(), []Change{
		Create(&models.Contract{}),
		Create(&models.Contract{}),
		Delete(&models.Contract{}),
	})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.AuditChanges.WithLabelValues("added")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuditChanges.WithLabelValues("deleted")))
}
