package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func parseOptionalBool(value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parsePageParams reads the shared cursor pagination query parameters.
func parsePageParams(c *gin.Context) (pageToken string, pageSize int32, err error) {
	pageToken = strings.TrimSpace(c.Query("page_token"))

	raw := strings.TrimSpace(c.Query("page_size"))
	if raw == "" {
		return pageToken, 0, nil
	}
	parsed, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || parsed < 0 {
		return "", 0, invalidRequestError()
	}
	if parsed > 100 {
		parsed = 100
	}
	return pageToken, int32(parsed), nil
}
