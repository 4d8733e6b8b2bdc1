package telegram

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steven-peralta/discord-paginationembed/core/paginate"

	tele "gopkg.in/telebot.v4"
)

func TestRendererRenderSlicesPage(t *testing.T) {
	r := NewRenderer(nil, nil, 2, func(v string) string { return "- " + v })

	p, err := r.Render(context.Background(),
		paginate.RenderContext[string]{
			Elements: []string{"a", "b", "c", "d", "e"},
			Page:     3,
			Total:    3,
		},
		paginate.RenderConfig{TriggerKeys: []string{"◀", "▶"}},
	)
	require.NoError(t, err)

	payload, ok := p.(pagePayload)
	require.True(t, ok)
	assert.Equal(t, "- e\n", payload.text)
	require.NotNil(t, payload.markup)
	assert.Len(t, payload.markup.InlineKeyboard[0], 2)
}

func TestRendererRenderHeaderAndIndicator(t *testing.T) {
	r := NewRenderer(nil, nil, 2, func(v string) string { return v }).
		SetHeader("Results")

	p, err := r.Render(context.Background(),
		paginate.RenderContext[string]{Elements: []string{"a", "b", "c"}, Page: 1, Total: 2},
		paginate.RenderConfig{PageIndicator: true},
	)
	require.NoError(t, err)

	payload := p.(pagePayload)
	assert.Equal(t, "Results\n\na\nb\n\nPage 1/2", payload.text)
	assert.Nil(t, payload.markup)
}

func TestRendererRenderOutOfRange(t *testing.T) {
	r := NewRenderer[string](nil, nil, 2, nil)
	_, err := r.Render(context.Background(),
		paginate.RenderContext[string]{Elements: []string{"a"}, Page: 2, Total: 1},
		paginate.RenderConfig{},
	)
	require.Error(t, err)
}

func TestRendererDefaultsLineFormatter(t *testing.T) {
	r := NewRenderer[int](nil, nil, 0, nil)
	assert.Equal(t, 1, r.PageSize())

	p, err := r.Render(context.Background(),
		paginate.RenderContext[int]{Elements: []int{7}, Page: 1, Total: 1},
		paginate.RenderConfig{},
	)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d\n", 7), p.(pagePayload).text)
}

func TestUpdateRejectsForeignHandle(t *testing.T) {
	r := NewRenderer[string](nil, nil, 1, nil)
	err := r.Update(context.Background(), "not a message", pagePayload{})
	assert.ErrorIs(t, err, errNotAMessage)

	err = r.Remove(context.Background(), 42)
	assert.ErrorIs(t, err, errNotAMessage)
}

func TestPublishRejectsForeignPayload(t *testing.T) {
	r := NewRenderer[string](nil, nil, 1, nil)
	_, err := r.Publish(context.Background(), 42)
	require.Error(t, err)
}

func TestAsPagePayload(t *testing.T) {
	_, err := asPagePayload("something else")
	require.Error(t, err)

	payload, err := asPagePayload(pagePayload{text: "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", payload.text)
}

func TestIsNotModified(t *testing.T) {
	assert.True(t, isNotModified(&tele.Error{Code: 400, Description: "Bad Request: message is not modified"}))
	assert.False(t, isNotModified(&tele.Error{Code: 400, Description: "Bad Request: message to edit not found"}))
	assert.False(t, isNotModified(fmt.Errorf("plain error")))
}
