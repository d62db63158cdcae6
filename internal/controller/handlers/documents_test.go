package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripURLHidesBotToken(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("download file: %w", stripURL(&url.Error{
		Op:  "Get",
		URL: "https://api.telegram.org/file/bot123456:SECRET-TOKEN/documents/file_1.json",
		Err: cause,
	}))

	assert.NotContains(t, err.Error(), "SECRET-TOKEN")
	assert.NotContains(t, err.Error(), "api.telegram.org")
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, context.Canceled, stripURL(context.Canceled))
}
