// Package security evaluates the access policy of the authoritative store.
// Rules are CEL expressions compiled once per operation; a request is allowed
// only when the expression for its operation evaluates to true (default
// deny).
package security

import (
	"context"
	"fmt"

	"bookmark-sync/internal/shared/logger"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
	"go.uber.org/zap"
)

// Operation identifies the store operation a rule guards.
type Operation string

const (
	OperationRead   Operation = "read"
	OperationCreate Operation = "create"
	OperationDelete Operation = "delete"
)

// DefaultRules is the owner-scoping policy: a caller may only read, create
// and delete bookmarks whose owner matches their authenticated identity.
var DefaultRules = map[Operation]string{
	OperationRead:   `auth != null && auth.uid == resource.owner`,
	OperationCreate: `auth != null && auth.uid == resource.owner`,
	OperationDelete: `auth != null && auth.uid == resource.owner`,
}

// AccessContext carries the inputs a rule evaluates against.
type AccessContext struct {
	// UserID is the authenticated caller identity; empty means unauthenticated.
	UserID string
	// OwnerID is the owner of the resource being accessed.
	OwnerID string
	// Resource carries additional resource attributes visible to rules.
	Resource map[string]interface{}
}

// RulesEngine compiles and evaluates the access policy.
type RulesEngine struct {
	programs map[Operation]cel.Program
	log      logger.Logger
}

// NewRulesEngine compiles the given rule set. Operations without a rule are
// denied.
func NewRulesEngine(rules map[Operation]string, log logger.Logger) (*RulesEngine, error) {
	env, err := cel.NewEnv(
		cel.Declarations(
			decls.NewVar("auth", decls.Dyn),
			decls.NewVar("resource", decls.Dyn),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	programs := make(map[Operation]cel.Program, len(rules))
	for op, expression := range rules {
		ast, issues := env.Compile(expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("CEL compilation error for %s rule: %w", op, issues.Err())
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("failed to create CEL program for %s rule: %w", op, err)
		}
		programs[op] = program
	}

	return &RulesEngine{programs: programs, log: log}, nil
}

// Allowed evaluates the rule for the operation against the access context.
// Evaluation errors and non-boolean results deny access.
func (e *RulesEngine) Allowed(ctx context.Context, op Operation, access AccessContext) bool {
	program, ok := e.programs[op]
	if !ok {
		e.log.Warn("No rule for operation, denying access",
			zap.String("operation", string(op)))
		return false
	}

	var auth interface{}
	if access.UserID != "" {
		auth = map[string]interface{}{"uid": access.UserID}
	}

	resource := map[string]interface{}{"owner": access.OwnerID}
	for k, v := range access.Resource {
		resource[k] = v
	}

	out, _, err := program.Eval(map[string]interface{}{
		"auth":     auth,
		"resource": resource,
	})
	if err != nil {
		e.log.Error("CEL evaluation failed, denying access",
			zap.String("operation", string(op)),
			zap.Error(err))
		return false
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		e.log.Error("Rule did not evaluate to a boolean, denying access",
			zap.String("operation", string(op)))
		return false
	}
	return allowed
}
