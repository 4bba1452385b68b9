// Package privacy provides privacy layer types and rule implementations for Velox ORM.
//
// The privacy layer provides allow/deny/skip rules and policies for ORM-level
// authorization, defined directly in the schema. Policies are evaluated by calling
// EvalQuery or EvalMutation; no other package in this module calls them.
//
// # Core Concepts
//
// The privacy layer is built around three main concepts:
//
//   - Policy: A collection of rules that determine access to entities
//   - Rule: A function that returns Allow, Deny, or Skip decisions
//   - Viewer: An interface representing the current user/context
//
// # Defining Policies
//
// Policies are defined on schema types using the Policy() method:
//
//	func (User) Policy() velox.Policy {
//	    return privacy.Policy{
//	        Mutation: privacy.MutationPolicy{
//	            privacy.DenyIfNoViewer(),       // Require authentication
//	            privacy.HasRole("admin"),       // Allow admins
//	            privacy.IsOwner("user_id"),     // Allow owners
//	            privacy.AlwaysDenyRule(),       // Deny by default
//	        },
//	        Query: privacy.QueryPolicy{
//	            privacy.AlwaysAllowRule(),      // Allow all queries
//	        },
//	    }
//	}
//
// # Rule Evaluation
//
// Rules are evaluated in order until one returns a final decision:
//
//   - Allow: Grants access and stops evaluation
//   - Deny: Denies access and stops evaluation
//   - Skip: Continues to the next rule
//
// If all rules return Skip (or nil), the policy returns nil, which allows access.
//
// # Built-in Rules
//
// The package provides several built-in rules:
//
//   - DenyIfNoViewer: Denies if no viewer is present in context
//   - AlwaysAllowRule: Always allows access
//   - AlwaysDenyRule: Always denies access
//   - HasRole: Allows if viewer has the specified role
//   - HasAnyRole: Allows if viewer has any of the specified roles
//   - IsOwner: Allows if viewer owns the entity
//   - TenantRule: Allows if viewer belongs to the same tenant
//
// # Rule Combinators
//
// The package has no And/Or/Not combinators. A QueryPolicy or MutationPolicy
// evaluates its rules in order, Policies chains whole policies, and
// OnMutationOperation limits a mutation rule to the given operations.
//
// # Viewer Interface
//
// The Viewer interface represents the authenticated user:
//
//	type Viewer interface {
//	    GetID() string       // Unique user identifier
//	    GetRoles() []string  // User's roles
//	    GetTenantID() string // Tenant ID for multi-tenancy
//	}
//
// A SimpleViewer implementation is provided for basic use cases:
//
//	viewer := &privacy.SimpleViewer{
//	    UserID:   "user-123",
//	    Roles:    []string{"admin", "user"},
//	    TenantID: "tenant-abc",
//	}
//
// # Context Integration
//
// The viewer is stored in context and retrieved during policy evaluation:
//
//	ctx := privacy.WithViewer(ctx, &privacy.SimpleViewer{
//	    UserID: "user-123",
//	    Roles:  []string{"user"},
//	})
//	err := userPolicy.EvalQuery(ctx, q)
//
// # Error Handling
//
// When access is denied, the returned error wraps privacy.Deny and its
// message carries the reason:
//
//	if errors.Is(err, privacy.Deny) {
//	    log.Printf("Access denied: %v", err)
//	}
package privacy
