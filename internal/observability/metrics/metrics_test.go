package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestFilterAttributesKeepsAllowedKeys(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("waste_category", "plastic"),
		attribute.String("status", "completed"),
		attribute.String("endpoint", "/api/dispose"),
	)

	assert.Len(t, attrs, 3)
}

func TestFilterAttributesDropsIdentifiers(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("waste_category", "paper"),
		attribute.String("cnic", "12345-1234567-1"),
		attribute.String("username", "ali"),
		attribute.String("bin_serial", "BIN-0001"),
	)

	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("waste_category"), attrs[0].Key)
}
