package controller

import (
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
)

func textUpdate(text string) *models.Update {
	return &models.Update{Message: &models.Message{Text: text}}
}

func TestMatchCommand(t *testing.T) {
	day := matchCommand("day")

	assert.True(t, day(textUpdate("/day")))
	assert.True(t, day(textUpdate("/day 10/06/2025")))
	assert.True(t, day(textUpdate("/day@exam_bot 10/06/2025")))
	assert.False(t, day(textUpdate("/daily")))
	assert.False(t, day(textUpdate("day")))
	assert.False(t, day(&models.Update{CallbackQuery: &models.CallbackQuery{Data: "day:2025-06-10"}}))
}

func TestCommandName(t *testing.T) {
	assert.Equal(t, "book", commandName(textUpdate("/book Mario Rossi")))
	assert.Equal(t, "", commandName(textUpdate("Mario Rossi")))
	assert.Equal(t, "", commandName(&models.Update{}))
}
