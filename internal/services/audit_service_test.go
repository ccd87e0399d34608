package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mkoumba/translog-api/internal/jobs"
)

type fakeAsyncQueue struct {
	enqueued []jobs.Job
}

func (f *fakeAsyncQueue) EnqueueAsync(job jobs.Job) {
	f.enqueued = append(f.enqueued, job)
}

func TestAuditService_LogLeavesRequestPath(t *testing.T) {
	queue := &fakeAsyncQueue{}
	svc := NewAuditService(&gorm.DB{}, queue)

	err := svc.Log(context.Background(), 1, "CREATE", "Devis", 4, "création du devis", "", "")
	require.NoError(t, err)
	assert.Len(t, queue.enqueued, 1)
}

func TestAuditService_NilServiceIsNoOp(t *testing.T) {
	var svc *AuditService
	assert.NoError(t, svc.Log(context.Background(), 1, "CREATE", "Devis", 4, "", "", ""))
}
