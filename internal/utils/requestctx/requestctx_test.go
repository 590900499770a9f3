package requestctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))
	assert.Empty(t, ClientID(ctx))

	ctx = WithClientID(WithRequestID(ctx, "req-1"), "client-9")
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "client-9", ClientID(ctx))

	//nolint:staticcheck // nil parent is accepted
	assert.Equal(t, "req-2", RequestID(WithRequestID(nil, "req-2")))
	//nolint:staticcheck // nil context reads as empty
	assert.Empty(t, ClientID(nil))
}
