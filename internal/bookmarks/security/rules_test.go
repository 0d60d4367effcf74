package security

import (
	"context"
	"testing"

	"bookmark-sync/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T) *RulesEngine {
	t.Helper()
	engine, err := NewRulesEngine(DefaultRules, logger.NewLoggerWithConfig("error", "text"))
	require.NoError(t, err)
	return engine
}

func TestRulesEngine_OwnerMayAccessOwnResources(t *testing.T) {
	engine := testEngine(t)
	access := AccessContext{UserID: "user-1", OwnerID: "user-1"}

	for _, op := range []Operation{OperationRead, OperationCreate, OperationDelete} {
		assert.True(t, engine.Allowed(context.Background(), op, access), "operation %s", op)
	}
}

func TestRulesEngine_ForeignOwnerDenied(t *testing.T) {
	engine := testEngine(t)
	access := AccessContext{UserID: "user-1", OwnerID: "user-2"}

	for _, op := range []Operation{OperationRead, OperationCreate, OperationDelete} {
		assert.False(t, engine.Allowed(context.Background(), op, access), "operation %s", op)
	}
}

func TestRulesEngine_UnauthenticatedDenied(t *testing.T) {
	engine := testEngine(t)

	allowed := engine.Allowed(context.Background(), OperationRead, AccessContext{OwnerID: "user-1"})
	assert.False(t, allowed, "null auth must never pass the policy")
}

func TestRulesEngine_UnknownOperationDenied(t *testing.T) {
	engine := testEngine(t)

	allowed := engine.Allowed(context.Background(), Operation("admin"), AccessContext{
		UserID:  "user-1",
		OwnerID: "user-1",
	})
	assert.False(t, allowed)
}

func TestRulesEngine_CompilationErrorSurfaces(t *testing.T) {
	_, err := NewRulesEngine(map[Operation]string{
		OperationRead: `auth.uid ==`,
	}, logger.NewLoggerWithConfig("error", "text"))
	require.Error(t, err)
}

func TestRulesEngine_CustomResourceAttributes(t *testing.T) {
	engine, err := NewRulesEngine(map[Operation]string{
		OperationRead: `auth != null && resource.visibility == "public"`,
	}, logger.NewLoggerWithConfig("error", "text"))
	require.NoError(t, err)

	assert.True(t, engine.Allowed(context.Background(), OperationRead, AccessContext{
		UserID:   "user-1",
		OwnerID:  "user-2",
		Resource: map[string]interface{}{"visibility": "public"},
	}))
	assert.False(t, engine.Allowed(context.Background(), OperationRead, AccessContext{
		UserID:   "user-1",
		OwnerID:  "user-2",
		Resource: map[string]interface{}{"visibility": "private"},
	}))
}
