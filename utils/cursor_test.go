package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCursorRoundTrip(t *testing.T) {
	assert := assert.New(t)

	sortKey := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	raw := EncodeCursor(sortKey, "task-123")
	assert.NotEmpty(raw)

	cursor, err := DecodeCursor(raw)
	assert.Nil(err)
	assert.True(cursor.SortKey.Equal(sortKey))
	assert.Equal("task-123", cursor.ID)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	assert := assert.New(t)

	_, err := DecodeCursor("!!!not-base64!!!")
	assert.NotNil(err)

	// 合法base64但不是JSON
	_, err = DecodeCursor("bm90LWpzb24")
	assert.NotNil(err)
}

func TestNormalizeLimit(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(20, NormalizeLimit(0))
	assert.Equal(20, NormalizeLimit(-5))
	assert.Equal(50, NormalizeLimit(50))
	assert.Equal(100, NormalizeLimit(1000))
}
