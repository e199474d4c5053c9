package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trash2cash/platform/internal/clock"
	"github.com/trash2cash/platform/internal/config"
	profiledomain "github.com/trash2cash/platform/internal/profile/domain"
	profilerepository "github.com/trash2cash/platform/internal/profile/repository"
	"github.com/trash2cash/platform/internal/redemption/domain"
	redemptionrepository "github.com/trash2cash/platform/internal/redemption/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, refundOnReject bool) (*Service, *gorm.DB, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.Redemption{},
		&profiledomain.UserProfile{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		Cfg: config.Config{
			Redemption: config.RedemptionConfig{
				MinPoints:      70,
				PKRPerPoint:    0.5,
				VoucherPrefix:  "T2C-",
				VoucherTTLDays: 30,
				RefundOnReject: refundOnReject,
			},
		},
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fake,
		Repo:     redemptionrepository.Provide(),
		Profiles: profilerepository.Provide(),
	})

	return svc.(*Service), db, node, fake
}

func seedProfile(t *testing.T, db *gorm.DB, node *snowflake.Node, userID snowflake.ID, totalPoints int64) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, db.Create(&profiledomain.UserProfile{
		ID:          node.Generate(),
		UserID:      userID,
		TotalPoints: totalPoints,
		Level:       profiledomain.LevelForPoints(totalPoints),
		CreatedAt:   now,
		UpdatedAt:   now,
	}).Error)
}

func TestSubmit_DeductsPointsAndIssuesVoucher(t *testing.T) {
	svc, db, node, fake := newTestService(t, true)
	ctx := context.Background()

	userID := node.Generate()
	seedProfile(t, db, node, userID, 150)

	redemption, err := svc.Submit(ctx, domain.SubmitRequest{
		UserID: userID.String(),
		Points: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, redemption.Status)
	assert.Equal(t, domain.CategoryVoucher, redemption.Category)
	assert.Equal(t, int64(100), redemption.Points)
	assert.InDelta(t, 50.0, redemption.AmountPKR, 0.001)
	assert.True(t, strings.HasPrefix(redemption.VoucherCode, "T2C-"))
	assert.Len(t, redemption.VoucherCode, len("T2C-")+8)
	assert.Equal(t, fake.Now().AddDate(0, 0, 30), redemption.ExpiresAt)

	var profile profiledomain.UserProfile
	require.NoError(t, db.Take(&profile, "user_id = ?", userID).Error)
	assert.Equal(t, int64(50), profile.TotalPoints)
}

func TestSubmit_Validation(t *testing.T) {
	svc, db, node, _ := newTestService(t, true)
	ctx := context.Background()

	userID := node.Generate()
	seedProfile(t, db, node, userID, 150)

	_, err := svc.Submit(ctx, domain.SubmitRequest{UserID: "nope", Points: 100})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.Submit(ctx, domain.SubmitRequest{UserID: userID.String(), Points: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidPoints)

	_, err = svc.Submit(ctx, domain.SubmitRequest{UserID: userID.String(), Points: 69})
	assert.ErrorIs(t, err, domain.ErrBelowMinimum)

	_, err = svc.Submit(ctx, domain.SubmitRequest{UserID: userID.String(), Points: 100, Category: "crypto"})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestSubmit_CategoryFields(t *testing.T) {
	svc, db, node, _ := newTestService(t, true)
	ctx := context.Background()

	userID := node.Generate()
	seedProfile(t, db, node, userID, 500)

	// Bill categories need provider and reference.
	_, err := svc.Submit(ctx, domain.SubmitRequest{
		UserID:   userID.String(),
		Category: domain.CategoryElectricity,
		Points:   100,
	})
	assert.ErrorIs(t, err, domain.ErrMissingBillDetails)

	bill, err := svc.Submit(ctx, domain.SubmitRequest{
		UserID:        userID.String(),
		Category:      domain.CategoryElectricity,
		Points:        100,
		BillProvider:  "IESCO",
		BillReference: "0412-3345678",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryElectricity, bill.Category)
	assert.Equal(t, "IESCO", bill.BillProvider)
	assert.Equal(t, "0412-3345678", bill.BillReference)

	_, err = svc.Submit(ctx, domain.SubmitRequest{
		UserID:   userID.String(),
		Category: domain.CategoryCharity,
		Points:   70,
	})
	assert.ErrorIs(t, err, domain.ErrMissingCharityName)

	charity, err := svc.Submit(ctx, domain.SubmitRequest{
		UserID:      userID.String(),
		Category:    "Charity",
		Points:      70,
		CharityName: "Edhi Foundation",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryCharity, charity.Category)
	assert.Equal(t, "Edhi Foundation", charity.CharityName)
}

func TestSubmit_InsufficientBalance(t *testing.T) {
	svc, db, node, _ := newTestService(t, true)
	ctx := context.Background()

	userID := node.Generate()
	seedProfile(t, db, node, userID, 80)

	_, err := svc.Submit(ctx, domain.SubmitRequest{UserID: userID.String(), Points: 100})
	assert.ErrorIs(t, err, domain.ErrInsufficientPoints)

	// Nothing was deducted and no voucher was written.
	var profile profiledomain.UserProfile
	require.NoError(t, db.Take(&profile, "user_id = ?", userID).Error)
	assert.Equal(t, int64(80), profile.TotalPoints)

	var count int64
	require.NoError(t, db.Model(&domain.Redemption{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestLifecycle_ApproveThenComplete(t *testing.T) {
	svc, db, node, _ := newTestService(t, true)
	ctx := context.Background()

	userID := node.Generate()
	seedProfile(t, db, node, userID, 200)

	submitted, err := svc.Submit(ctx, domain.SubmitRequest{UserID: userID.String(), Points: 100})
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, submitted.ID.String(), "verified against ledger")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)
	assert.Equal(t, "verified against ledger", approved.AdminNotes)
	require.NotNil(t, approved.DecidedAt)

	completed, err := svc.Complete(ctx, submitted.ID.String(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	// The decision timestamp and note survive completion.
	var stored domain.Redemption
	require.NoError(t, db.Take(&stored, "id = ?", submitted.ID).Error)
	assert.NotNil(t, stored.DecidedAt)
	assert.NotNil(t, stored.CompletedAt)
	assert.Equal(t, "verified against ledger", stored.AdminNotes)
}

func TestSubmit_RecomputesLevelAfterDeduction(t *testing.T) {
	svc, db, node, _ := newTestService(t, true)
	ctx := context.Background()

	userID := node.Generate()
	seedProfile(t, db, node, userID, 300)

	submitted, err := svc.Submit(ctx, domain.SubmitRequest{UserID: userID.String(), Points: 250})
	require.NoError(t, err)

	var profile profiledomain.UserProfile
	require.NoError(t, db.Take(&profile, "user_id = ?", userID).Error)
	assert.Equal(t, int64(50), profile.TotalPoints)
	assert.Equal(t, profiledomain.LevelForPoints(50), profile.Level)

	// The refund on reject restores the tier along with the balance.
	_, err = svc.Reject(ctx, submitted.ID.String(), "")
	require.NoError(t, err)

	require.NoError(t, db.Take(&profile, "user_id = ?", userID).Error)
	assert.Equal(t, int64(300), profile.TotalPoints)
	assert.Equal(t, profiledomain.LevelForPoints(300), profile.Level)
}

func TestReject_RefundsPoints(t *testing.T) {
	svc, db, node, _ := newTestService(t, true)
	ctx := context.Background()

	userID := node.Generate()
	seedProfile(t, db, node, userID, 100)

	submitted, err := svc.Submit(ctx, domain.SubmitRequest{UserID: userID.String(), Points: 100})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, submitted.ID.String(), "duplicate request")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
	assert.Equal(t, "duplicate request", rejected.AdminNotes)

	var profile profiledomain.UserProfile
	require.NoError(t, db.Take(&profile, "user_id = ?", userID).Error)
	assert.Equal(t, int64(100), profile.TotalPoints)
}

func TestReject_NoRefundWhenDisabled(t *testing.T) {
	svc, db, node, _ := newTestService(t, false)
	ctx := context.Background()

	userID := node.Generate()
	seedProfile(t, db, node, userID, 100)

	submitted, err := svc.Submit(ctx, domain.SubmitRequest{UserID: userID.String(), Points: 100})
	require.NoError(t, err)

	_, err = svc.Reject(ctx, submitted.ID.String(), "")
	require.NoError(t, err)

	var profile profiledomain.UserProfile
	require.NoError(t, db.Take(&profile, "user_id = ?", userID).Error)
	assert.Equal(t, int64(0), profile.TotalPoints)
}

func TestTransition_InvalidMoves(t *testing.T) {
	svc, db, node, _ := newTestService(t, true)
	ctx := context.Background()

	userID := node.Generate()
	seedProfile(t, db, node, userID, 200)

	submitted, err := svc.Submit(ctx, domain.SubmitRequest{UserID: userID.String(), Points: 100})
	require.NoError(t, err)

	// Pending cannot complete directly.
	_, err = svc.Complete(ctx, submitted.ID.String(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.Reject(ctx, submitted.ID.String(), "")
	require.NoError(t, err)

	// Rejected is terminal.
	_, err = svc.Approve(ctx, submitted.ID.String(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.Approve(ctx, node.Generate().String(), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_FiltersByUserAndStatus(t *testing.T) {
	svc, db, node, _ := newTestService(t, true)
	ctx := context.Background()

	userID := node.Generate()
	otherID := node.Generate()
	seedProfile(t, db, node, userID, 500)
	seedProfile(t, db, node, otherID, 500)

	first, err := svc.Submit(ctx, domain.SubmitRequest{UserID: userID.String(), Points: 100})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, domain.SubmitRequest{UserID: userID.String(), Points: 70})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, domain.SubmitRequest{UserID: otherID.String(), Points: 70})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, first.ID.String(), "")
	require.NoError(t, err)

	byUser, err := svc.List(ctx, domain.ListRedemptionsRequest{UserID: userID.String()})
	require.NoError(t, err)
	assert.Len(t, byUser.Redemptions, 2)

	pending, err := svc.List(ctx, domain.ListRedemptionsRequest{
		UserID: userID.String(),
		Status: domain.StatusPending,
	})
	require.NoError(t, err)
	assert.Len(t, pending.Redemptions, 1)

	_, err = svc.List(ctx, domain.ListRedemptionsRequest{Status: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
