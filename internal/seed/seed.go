package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/trash2cash/platform/internal/account/domain"
	"github.com/trash2cash/platform/internal/auth/password"
	referencedomain "github.com/trash2cash/platform/internal/reference/domain"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminCNIC     = "00000-0000000-0"
	defaultAdminEmail    = "admin@trash2cash.pk"
	defaultAdminPassword = "admin"
)

// EnsureReferenceData seeds the bill providers and charities the redemption
// flow offers. Existing rows are left alone so operators can deactivate
// entries without the seed resurrecting them.
func EnsureReferenceData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureBillProviders(ctx, tx); err != nil {
			return err
		}
		return ensureCharities(ctx, tx)
	})
}

// EnsureStaffAdmin seeds a staff account for fresh development deployments.
func EnsureStaffAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user accountdomain.User
		err := tx.WithContext(ctx).
			Where("username = ?", defaultAdminUsername).
			First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(defaultAdminPassword)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		user = accountdomain.User{
			ID:           node.Generate(),
			Username:     defaultAdminUsername,
			CNIC:         defaultAdminCNIC,
			Email:        defaultAdminEmail,
			PasswordHash: hashed,
			IsStaff:      true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.WithContext(ctx).Create(&user).Error
	})
}

func ensureBillProviders(ctx context.Context, db *gorm.DB) error {
	providers := []referencedomain.BillProvider{
		{Code: "iesco", Name: "IESCO", Kind: referencedomain.ProviderKindElectricity},
		{Code: "lesco", Name: "LESCO", Kind: referencedomain.ProviderKindElectricity},
		{Code: "kelectric", Name: "K-Electric", Kind: referencedomain.ProviderKindElectricity},
		{Code: "sngpl", Name: "SNGPL", Kind: referencedomain.ProviderKindGas},
		{Code: "ssgc", Name: "SSGC", Kind: referencedomain.ProviderKindGas},
	}

	for _, p := range providers {
		err := db.WithContext(ctx).Exec(`
			INSERT INTO bill_providers (code, name, kind)
			VALUES (?, ?, ?)
			ON CONFLICT (code) DO NOTHING
		`, p.Code, p.Name, p.Kind).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureCharities(ctx context.Context, db *gorm.DB) error {
	charities := []referencedomain.Charity{
		{Code: "edhi", Name: "Edhi Foundation"},
		{Code: "saylani", Name: "Saylani Welfare"},
		{Code: "akhuwat", Name: "Akhuwat"},
	}

	for _, c := range charities {
		err := db.WithContext(ctx).Exec(`
			INSERT INTO charities (code, name)
			VALUES (?, ?)
			ON CONFLICT (code) DO NOTHING
		`, c.Code, c.Name).Error
		if err != nil {
			return err
		}
	}
	return nil
}
