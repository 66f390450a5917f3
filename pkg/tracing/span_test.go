package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracerBuildsTree(t *testing.T) {
	tr := New(true, 1)
	ctx, root := tr.Start(context.Background(), "recommend", "")
	require.NotNil(t, root)
	assert.NotEmpty(t, root.TraceID)

	_, child := StartChildSpan(ctx, "rank")
	child.SetAttr("k", 10)
	child.End()
	tr.Finish(root)

	require.Len(t, root.Children, 1)
	assert.Equal(t, root.TraceID, root.Children[0].TraceID)
	assert.Equal(t, 10, root.Children[0].Attrs["k"])
	assert.False(t, root.EndTime.IsZero())
}

func TestDisabledTracerIsNoop(t *testing.T) {
	tr := New(false, 1)
	ctx, root := tr.Start(context.Background(), "recommend", "abc")
	assert.Nil(t, root)
	assert.Nil(t, SpanFromContext(ctx))

	_, child := StartChildSpan(ctx, "rank")
	assert.Nil(t, child)
	child.SetAttr("k", 1)
	child.End()
	tr.Finish(root)

	var nilTracer *Tracer
	_, s := nilTracer.Start(context.Background(), "x", "")
	assert.Nil(t, s)
}

func TestStartKeepsGivenTraceID(t *testing.T) {
	_, root := New(true, 1).Start(context.Background(), "search", "req-42")
	require.NotNil(t, root)
	assert.Equal(t, "req-42", root.TraceID)
}
