package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trash2cash/platform/internal/audit/domain"
	auditrepository "github.com/trash2cash/platform/internal/audit/repository"
	"github.com/trash2cash/platform/internal/clock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  auditrepository.Provide(),
	})

	return svc, db, node
}

func TestRecord_MasksSensitiveMetadata(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	targetID := node.Generate().String()
	require.NoError(t, svc.Record(ctx, domain.RecordRequest{
		ActorType:  domain.ActorTypeAdmin,
		ActorID:    "ops-1",
		Action:     "redemption.approved",
		TargetType: "redemption",
		TargetID:   targetID,
		Metadata: map[string]any{
			"cnic":   "12345-1234567-1",
			"points": int64(100),
		},
	}))

	var entry domain.AuditLog
	require.NoError(t, db.Where("target_id = ?", targetID).Take(&entry).Error)

	assert.Equal(t, domain.ActorTypeAdmin, entry.ActorType)
	assert.Equal(t, "ops-1", entry.ActorID)
	assert.Equal(t, "redemption.approved", entry.Action)
	assert.Equal(t, "*****-****567-1", entry.Metadata["cnic"])
	assert.NotContains(t, entry.Metadata["cnic"], "12345")
}

func TestRecord_RequiresAction(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Record(context.Background(), domain.RecordRequest{
		ActorType: domain.ActorTypeSystem,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
}

func TestList_FiltersByActionAndTarget(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx := context.Background()

	binID := node.Generate().String()
	otherID := node.Generate().String()

	require.NoError(t, svc.Record(ctx, domain.RecordRequest{
		ActorType:  domain.ActorTypeAdmin,
		Action:     "bin.status_changed",
		TargetType: "bin",
		TargetID:   binID,
	}))
	require.NoError(t, svc.Record(ctx, domain.RecordRequest{
		ActorType:  domain.ActorTypeAdmin,
		Action:     "issue.status_changed",
		TargetType: "issue",
		TargetID:   otherID,
	}))

	resp, err := svc.List(ctx, domain.ListAuditLogsRequest{
		Action:   "bin.status_changed",
		TargetID: binID,
	})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)
	assert.Equal(t, binID, resp.AuditLogs[0].TargetID)
	assert.False(t, resp.HasMore)
}
