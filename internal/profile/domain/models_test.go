package domain

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	accountdomain "github.com/trash2cash/platform/internal/account/domain"
)

func TestLevelForPoints(t *testing.T) {
	cases := []struct {
		points int64
		level  int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{499, 3},
		{500, 4},
		{999, 4},
		{1000, 5},
		{50000, 5},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelForPoints(tc.points), "points=%d", tc.points)
	}
}

func TestQRPayloadFor(t *testing.T) {
	user := accountdomain.User{
		ID:       snowflake.ID(1234567890),
		Username: "ali",
		CNIC:     "12345-1234567-1",
	}

	assert.Equal(t, "USER:1234567890|CNIC:12345-1234567-1|USERNAME:ali", QRPayloadFor(user))
}
