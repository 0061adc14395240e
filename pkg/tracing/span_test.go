package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanTree(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "solve", "req-1")
	_, child := StartChildSpan(ctx, "token")
	child.SetAttr("token", "cat")
	child.End()
	root.End()

	require.Same(t, root, SpanFromContext(ctx))
	assert.Equal(t, "req-1", child.TraceID)

	sum := root.Summary()
	assert.Equal(t, "solve", sum.Name)
	require.Len(t, sum.Children, 1)
	assert.Equal(t, "token", sum.Children[0].Name)
	assert.Equal(t, "cat", sum.Children[0].Attrs["token"])
	assert.Nil(t, sum.Attrs)
}

func TestChildSpanWithoutParent(t *testing.T) {
	ctx, span := StartChildSpan(context.Background(), "orphan")
	span.End()
	assert.Empty(t, span.TraceID)
	assert.Same(t, span, SpanFromContext(ctx))
	assert.Nil(t, SpanFromContext(context.Background()))
	span.Log(nil)
}
