package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrMissingAskService_Message(t *testing.T) {
	assert.Contains(t, ErrMissingAskService.Error(), "ask service")
}
